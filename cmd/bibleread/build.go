package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bibleread/internal/bible"
)

var (
	buildBook  string
	buildClean bool
	buildOut   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the text as static gzip-compressed JSON",
	Long: `Writes the loaded text and highlights as static files for an offline viewer:

  index.json.gz                   book list with per-chapter verse counts
  bible/{abbrev}/{ch}.json.gz     one chapter with its highlighted verses
  highlights.json.gz              every highlighted verse in canon order

Examples:
  bibleread build                 # build everything
  bibleread build --book gn       # build only one book
  bibleread build --clean         # delete the output directory first`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildBook, "book", "", "Only build files for this book")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Delete the output directory before building")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (default from config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	dir := cfg.Data.StaticDir
	if buildOut != "" {
		dir = buildOut
	}
	if buildClean {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", dir)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	only := ""
	if buildBook != "" {
		b, ok := a.index.Find(buildBook)
		if !ok {
			return fmt.Errorf("unknown book %q", buildBook)
		}
		only = b.Abbrev
	}
	return exportStatic(cmd.Context(), a, dir, only, cmd.OutOrStdout())
}

// ── JSON output types ─────────────────────────────────────────────────────────

// chapterPayload is the structure of bible/{abbrev}/{ch}.json.gz.
type chapterPayload struct {
	Book        string   `json:"book"`
	BookName    string   `json:"bookName"`
	Chapter     int      `json:"chapter"`
	GlobalIndex int      `json:"globalIndex"`
	Verses      []string `json:"verses"`
	Highlights  []int    `json:"highlights"`
}

type chapterEntry struct {
	Ch     int `json:"ch"`
	Verses int `json:"verses"`
}

type bookEntry struct {
	Abbrev      string         `json:"abbrev"`
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	Order       int            `json:"order"`
	Offset      int            `json:"offset"`
	Chapters    []chapterEntry `json:"chapters"`
}

// indexPayload is the structure of index.json.gz.
type indexPayload struct {
	TotalChapters int         `json:"totalChapters"`
	Books         []bookEntry `json:"books"`
}

// ── Building ──────────────────────────────────────────────────────────────────

// exportStatic writes the chapter files in parallel, bounded by the CPU
// count, then the index and, for full builds, the highlight list. onlyBook
// restricts the build to one book abbreviation.
func exportStatic(ctx context.Context, a *app, dir, onlyBook string, out io.Writer) error {
	books := a.bible.Books()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	files := 0
	for _, b := range books {
		if onlyBook != "" && b.Abbrev != onlyBook {
			continue
		}
		for ch := 1; ch <= len(b.Chapters); ch++ {
			files++
			g.Go(func() error { return buildChapter(gctx, a, dir, b.Abbrev, ch) })
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Built %d chapter files.\n", files)

	if err := buildIndex(a, dir, onlyBook); err != nil {
		return err
	}
	if onlyBook == "" {
		n, err := buildHighlights(ctx, a, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d highlighted verse(s).\n", n)
	}
	if n := cleanupUncompressed(dir); n > 0 {
		fmt.Fprintf(out, "Cleaned up %d uncompressed .json file(s).\n", n)
	}
	return nil
}

func buildChapter(ctx context.Context, a *app, dir, abbrev string, chapter int) error {
	verses, err := a.bible.Chapter(abbrev, chapter)
	if err != nil {
		return err
	}
	globalIndex, ok := a.index.Locate(abbrev, chapter)
	if !ok {
		return fmt.Errorf("%s %d is not in the index", abbrev, chapter)
	}
	highlights, err := a.highlights.Chapter(ctx, abbrev, chapter)
	if err != nil {
		return err
	}

	ref := a.index.At(globalIndex)
	payload := chapterPayload{
		Book:        abbrev,
		BookName:    ref.BookName,
		Chapter:     chapter,
		GlobalIndex: globalIndex,
		Verses:      verses,
		Highlights:  highlights,
	}
	path := filepath.Join(dir, "bible", abbrev, fmt.Sprintf("%d.json.gz", chapter))
	if err := writeGzJSON(path, payload); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Debug("Chapter written", zap.String("path", path), zap.Int("verses", len(verses)))
	return nil
}

func buildIndex(a *app, dir, onlyBook string) error {
	var payload indexPayload
	payload.TotalChapters = a.index.Len()
	for _, b := range a.bible.Books() {
		if onlyBook != "" && b.Abbrev != onlyBook {
			continue
		}
		meta, _ := a.index.Find(b.Abbrev)
		offset, _ := a.index.Offset(b.Abbrev)
		chs := make([]chapterEntry, len(b.Chapters))
		for i, verses := range b.Chapters {
			chs[i] = chapterEntry{Ch: i + 1, Verses: len(verses)}
		}
		payload.Books = append(payload.Books, bookEntry{
			Abbrev:      b.Abbrev,
			Name:        b.Name,
			DisplayName: meta.DisplayName,
			Order:       meta.Order,
			Offset:      offset,
			Chapters:    chs,
		})
	}
	return writeGzJSON(filepath.Join(dir, "index.json.gz"), payload)
}

func buildHighlights(ctx context.Context, a *app, dir string) (int, error) {
	all, err := a.highlights.All(ctx)
	if err != nil {
		return 0, err
	}
	verses := make([]bible.Verse, 0, len(all))
	for _, h := range all {
		v, err := a.bible.Verse(h.Book, h.Chapter, h.Verse-1)
		if err != nil {
			continue
		}
		verses = append(verses, v)
	}
	return len(verses), writeGzJSON(filepath.Join(dir, "highlights.json.gz"), verses)
}

func writeGzJSON(path string, payload any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	gw, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(gw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// cleanupUncompressed removes stray .json files left by older exports.
func cleanupUncompressed(dir string) int {
	removed := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed
}
