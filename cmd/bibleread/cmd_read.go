package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bibleread/internal/store"
)

var searchLimit int

var readCmd = &cobra.Command{
	Use:   "read [book] [chapter]",
	Short: "Print a chapter",
	Long: `Prints a chapter with verse numbers. Highlighted verses are marked with *.
The book may be given by abbreviation, English name or display name.

Examples:
  bibleread read gn 1
  bibleread read John 3`,
	Args: cobra.ExactArgs(2),
	RunE: readChapter,
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random verse",
	Args:  cobra.NoArgs,
	RunE:  randomVerse,
}

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Find verses containing text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  searchVerses,
}

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Manage verse highlights",
}

var highlightToggleCmd = &cobra.Command{
	Use:   "toggle [book] [chapter] [verse]",
	Short: "Highlight a verse, or remove its highlight",
	Args:  cobra.ExactArgs(3),
	RunE:  toggleHighlight,
}

var highlightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List highlighted verses in canon order",
	Args:  cobra.NoArgs,
	RunE:  listHighlights,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum results to print (default from config)")
	highlightCmd.AddCommand(highlightToggleCmd, highlightListCmd)
}

func readChapter(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	globalIndex, err := locateChapter(a, args[0], args[1])
	if err != nil {
		return err
	}
	ref := a.index.At(globalIndex)
	verses, err := a.bible.Chapter(ref.BookAbbrev, ref.Chapter)
	if err != nil {
		return err
	}
	marked, err := a.highlights.Chapter(cmd.Context(), ref.BookAbbrev, ref.Chapter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printChapter(out, ref.String(), verses, marked)
	if target, err := a.tracker.IsTarget(cmd.Context(), globalIndex); err == nil && target {
		hint := fmt.Sprintf("This is your next chapter. Mark it with: bibleread plan read %s %d",
			ref.BookAbbrev, ref.Chapter)
		fmt.Fprintf(out, "\n%s\n", newStyles(out).muted.Render(hint))
	}
	return nil
}

func randomVerse(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v := a.bible.Random(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d:%d  %s\n", v.BookName, v.Chapter, v.Verse, v.Text)
	return nil
}

func searchVerses(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	limit := cfg.Search.MaxResults
	if searchLimit > 0 {
		limit = searchLimit
	}
	res := a.bible.Search(strings.Join(args, " "), limit)
	logger.Debug("Search", zap.String("query", res.Query), zap.Int("total", res.Total))

	out := cmd.OutOrStdout()
	for _, v := range res.Verses {
		fmt.Fprintf(out, "%s %d:%d  %s\n", v.BookName, v.Chapter, v.Verse, v.Text)
	}
	if res.Total > len(res.Verses) {
		fmt.Fprintf(out, "\n%d of %d matches shown.\n", len(res.Verses), res.Total)
	} else {
		fmt.Fprintf(out, "\n%d match(es).\n", res.Total)
	}
	return nil
}

func toggleHighlight(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	chapter, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("chapter must be a number: %q", args[1])
	}
	verse, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("verse must be a number: %q", args[2])
	}
	on, err := a.highlights.Toggle(cmd.Context(), store.Highlight{Book: args[0], Chapter: chapter, Verse: verse})
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintln(cmd.OutOrStdout(), "Highlighted.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Highlight removed.")
	}
	return nil
}

func listHighlights(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.highlights.All(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, h := range all {
		v, err := a.bible.Verse(h.Book, h.Chapter, h.Verse-1)
		if err != nil {
			logger.Debug("Skipping highlight missing from dataset", zap.Error(err))
			continue
		}
		fmt.Fprintf(out, "%s %d:%d  %s\n", v.BookName, v.Chapter, v.Verse, v.Text)
	}
	return nil
}

func printChapter(w io.Writer, title string, verses []string, highlighted []int) {
	st := newStyles(w)
	fmt.Fprintf(w, "\n%s\n\n", st.title.Render(title))
	for i, text := range verses {
		mark := " "
		if slices.Contains(highlighted, i+1) {
			mark = st.mark.Render("*")
		}
		fmt.Fprintf(w, "%s%3d  %s\n", mark, i+1, text)
	}
}
