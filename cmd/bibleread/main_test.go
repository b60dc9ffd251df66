package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bibleread/internal/bible"
	"bibleread/internal/config"
	"bibleread/internal/plan"
)

const testBible = `[
  {"abbrev": "gn", "name": "Genesis", "displayName": "Genesis", "chapters": [
    ["In the beginning God created the heaven and the earth.", "And the earth was without form."],
    ["Thus the heavens and the earth were finished."],
    ["Now the serpent was more subtil."]
  ]},
  {"abbrev": "jo", "name": "John", "displayName": "John", "chapters": [
    ["In the beginning was the Word."],
    ["And the third day there was a marriage in Cana."]
  ]}
]`

type cli struct {
	configFile string
	staticDir  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	biblePath := filepath.Join(dir, "bible.json")
	require.NoError(t, os.WriteFile(biblePath, []byte(testBible), 0644))

	cfg := config.DefaultConfig()
	cfg.Data.BiblePath = biblePath
	cfg.Data.StaticDir = filepath.Join(dir, "static")
	cfg.Storage.DatabasePath = filepath.Join(dir, "reader.db")
	cfg.Plan.Presets = []config.PlanPreset{{Label: "five", Days: 5}}
	cfg.Logging.Level = "error"
	configFile := filepath.Join(dir, "bibleread.yaml")
	require.NoError(t, cfg.Save(configFile))

	return &cli{configFile: configFile, staticDir: cfg.Data.StaticDir}
}

// run executes the root command with fresh flag values and returns its
// output.
func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	planDays, planPreset, resetYes = 0, "", false
	searchLimit = 0
	buildBook, buildClean, buildOut = "", false, ""
	serveAddr = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", c.configFile}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestPlanCommands(t *testing.T) {
	c := newCLI(t)

	assert.Contains(t, c.mustRun(t, "plan", "status"), "No reading plan")

	_, err := c.run(t, "plan", "start")
	assert.Error(t, err)

	_, err = c.run(t, "plan", "start", "--days=-3")
	assert.ErrorIs(t, err, plan.ErrInvalidDuration)

	out := c.mustRun(t, "plan", "start", "--days", "5")
	assert.Contains(t, out, "Day 1 of 5: 0/5 chapters (0%)")
	assert.Contains(t, out, "Today: Genesis 1 (1 chapter(s))")

	out = c.mustRun(t, "plan", "today")
	assert.Contains(t, out, "In the beginning God created")

	_, err = c.run(t, "plan", "read", "gn", "2")
	assert.ErrorIs(t, err, plan.ErrNotTarget)

	_, err = c.run(t, "plan", "read", "gn", "9")
	assert.Error(t, err)

	out = c.mustRun(t, "plan", "read", "Genesis", "1")
	assert.Contains(t, out, "Marked Genesis 1 as read.")
	assert.Contains(t, out, "Next: Genesis 2")

	// Ahead of schedule, today's assignment is the single next chapter.
	out = c.mustRun(t, "plan", "complete")
	assert.Contains(t, out, "Marked Genesis 2 as read.")

	out = c.mustRun(t, "plan", "status")
	assert.Contains(t, out, "2/5 chapters (40%)")
	assert.Contains(t, out, "Ahead by 1 chapter(s)")

	_, err = c.run(t, "plan", "reset")
	assert.Error(t, err)
	assert.Contains(t, c.mustRun(t, "plan", "reset", "--yes"), "Plan deleted.")
	assert.Contains(t, c.mustRun(t, "plan", "status"), "No reading plan")

	_, err = c.run(t, "plan", "complete")
	assert.ErrorIs(t, err, plan.ErrNoPlan)
}

func TestPlanPresets(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun(t, "plan", "presets"), "five          5 days  1.0 chapters/day")

	out := c.mustRun(t, "plan", "start", "--preset", "FIVE")
	assert.Contains(t, out, "Day 1 of 5")
}

func TestReadAndHighlight(t *testing.T) {
	c := newCLI(t)

	assert.Contains(t, c.mustRun(t, "highlight", "toggle", "gn", "1", "2"), "Highlighted.")

	out := c.mustRun(t, "read", "gn", "1")
	assert.Contains(t, out, "Genesis 1")
	assert.Contains(t, out, "   1  In the beginning God created")
	assert.Contains(t, out, "*  2  And the earth was without form.")

	assert.Contains(t, c.mustRun(t, "highlight", "list"), "Genesis 1:2  And the earth was without form.")

	assert.Contains(t, c.mustRun(t, "highlight", "toggle", "gn", "1", "2"), "Highlight removed.")
	assert.NotContains(t, c.mustRun(t, "highlight", "list"), "Genesis")

	_, err := c.run(t, "highlight", "toggle", "gn", "7", "1")
	assert.Error(t, err)
	_, err = c.run(t, "read", "xx", "1")
	assert.Error(t, err)
}

func TestReadMarksNextChapter(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "plan", "start", "--days", "5")

	assert.Contains(t, c.mustRun(t, "read", "gn", "1"), "bibleread plan read gn 1")
	assert.NotContains(t, c.mustRun(t, "read", "gn", "2"), "bibleread plan read")
}

func TestSearch(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "search", "In", "the", "beginning")
	assert.Contains(t, out, "Genesis 1:1")
	assert.Contains(t, out, "John 1:1")
	assert.Contains(t, out, "2 match(es).")

	out = c.mustRun(t, "search", "-n", "1", "In the beginning")
	assert.Contains(t, out, "1 of 2 matches shown.")
	assert.NotContains(t, out, "John 1:1")
}

func TestRandom(t *testing.T) {
	c := newCLI(t)
	assert.Regexp(t, `^(Genesis|John) \d+:\d+  \S`, c.mustRun(t, "random"))
}

func readGzJSON(t *testing.T, path string, v any) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(gr).Decode(v))
}

func TestBuildExport(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "highlight", "toggle", "jo", "2", "1")

	stray := filepath.Join(c.staticDir, "bible", "gn", "old.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stray), 0755))
	require.NoError(t, os.WriteFile(stray, []byte("{}"), 0644))

	out := c.mustRun(t, "build")
	assert.Contains(t, out, "Built 5 chapter files.")
	assert.Contains(t, out, "Wrote 1 highlighted verse(s).")
	assert.Contains(t, out, "Cleaned up 1 uncompressed .json file(s).")
	assert.NoFileExists(t, stray)

	var index indexPayload
	readGzJSON(t, filepath.Join(c.staticDir, "index.json.gz"), &index)
	assert.Equal(t, 5, index.TotalChapters)
	require.Len(t, index.Books, 2)
	assert.Equal(t, 3, index.Books[1].Offset)
	assert.Equal(t, []chapterEntry{{Ch: 1, Verses: 1}, {Ch: 2, Verses: 1}}, index.Books[1].Chapters)

	var ch chapterPayload
	readGzJSON(t, filepath.Join(c.staticDir, "bible", "jo", "2.json.gz"), &ch)
	assert.Equal(t, 4, ch.GlobalIndex)
	assert.Equal(t, []int{1}, ch.Highlights)
	assert.Equal(t, []string{"And the third day there was a marriage in Cana."}, ch.Verses)

	var hl []bible.Verse
	readGzJSON(t, filepath.Join(c.staticDir, "highlights.json.gz"), &hl)
	require.Len(t, hl, 1)
	assert.Equal(t, "jo", hl[0].BookAbbrev)
}

func TestBuildSingleBook(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "build", "--clean", "--book", "John")
	assert.Contains(t, out, "Built 2 chapter files.")
	assert.NotContains(t, out, "highlighted")

	assert.FileExists(t, filepath.Join(c.staticDir, "bible", "jo", "1.json.gz"))
	assert.NoDirExists(t, filepath.Join(c.staticDir, "bible", "gn"))

	var index indexPayload
	readGzJSON(t, filepath.Join(c.staticDir, "index.json.gz"), &index)
	require.Len(t, index.Books, 1)
	assert.Equal(t, "jo", index.Books[0].Abbrev)

	_, err := c.run(t, "build", "--book", "nope")
	assert.Error(t, err)
}
