package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bibleread/internal/plan"
)

var (
	planDays   int
	planPreset string
	resetYes   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage the reading plan",
}

var planStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new plan today, replacing any existing one",
	Long: `Starts a reading plan that covers every chapter in the given number of days.

Examples:
  bibleread plan start --days 90
  bibleread plan start --preset "1 year"`,
	Args: cobra.NoArgs,
	RunE: planStart,
}

var planStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plan progress and today's assignment",
	Args:  cobra.NoArgs,
	RunE:  planStatus,
}

var planTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print today's assignment and its text",
	Args:  cobra.NoArgs,
	RunE:  planToday,
}

var planCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark today's assignment as read",
	Args:  cobra.NoArgs,
	RunE:  planComplete,
}

var planReadCmd = &cobra.Command{
	Use:   "read [book] [chapter]",
	Short: "Mark the next unread chapter as read",
	Long: `Marks a single chapter as read. Only the plan's next unread chapter is
accepted; any other chapter is rejected and the plan is left unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: planRead,
}

var planResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the reading plan",
	Args:  cobra.NoArgs,
	RunE:  planReset,
}

var planPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List suggested plan lengths",
	Args:  cobra.NoArgs,
	RunE:  planPresets,
}

func init() {
	planStartCmd.Flags().IntVar(&planDays, "days", 0, "Plan length in days")
	planStartCmd.Flags().StringVar(&planPreset, "preset", "", "Use a configured preset by label")
	planResetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm deletion")

	planCmd.AddCommand(planStartCmd, planStatusCmd, planTodayCmd, planCompleteCmd,
		planReadCmd, planResetCmd, planPresetsCmd)
}

func planStart(cmd *cobra.Command, args []string) error {
	days := planDays
	if planPreset != "" && days != 0 {
		return errors.New("--days and --preset cannot be combined")
	}
	if planPreset != "" {
		found := false
		for _, p := range presets() {
			if strings.EqualFold(p.Label, planPreset) {
				days, found = p.Days, true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown preset %q", planPreset)
		}
	}
	if days == 0 {
		return errors.New("one of --days or --preset is required")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.tracker.Start(cmd.Context(), days); err != nil {
		return err
	}
	snap, err := a.tracker.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func planStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.tracker.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func planToday(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.tracker.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if snap.Assignment == nil {
		printSnapshot(out, snap)
		return nil
	}
	fmt.Fprintf(out, "Today: %s\n", formatAssignment(*snap.Assignment))
	for i := snap.Assignment.Start.GlobalIndex; i <= snap.Assignment.End.GlobalIndex; i++ {
		ref := a.index.At(i)
		verses, err := a.bible.Chapter(ref.BookAbbrev, ref.Chapter)
		if err != nil {
			return err
		}
		printChapter(out, ref.String(), verses, nil)
	}
	return nil
}

func planComplete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, done, err := a.tracker.CompleteToday(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read.\n", formatAssignment(done))
	if done.Final {
		fmt.Fprintln(cmd.OutOrStdout(), "Plan complete.")
	}
	return nil
}

func planRead(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	globalIndex, err := locateChapter(a, args[0], args[1])
	if err != nil {
		return err
	}
	st, err := a.tracker.MarkChapterRead(cmd.Context(), globalIndex)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read.\n", a.index.At(globalIndex))
	if next, ok := a.index.Lookup(st.CurrentIndex); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Next: %s\n", next)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Plan complete.")
	}
	return nil
}

func planReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return errors.New("refusing to delete the plan without --yes")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Plan deleted.")
	return nil
}

func planPresets(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched := a.tracker.Scheduler()
	for _, p := range presets() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %4d days  %.1f chapters/day\n",
			p.Label, p.Days, sched.ChaptersPerDay(p.Days))
	}
	return nil
}

// locateChapter resolves a book key and a chapter number argument.
func locateChapter(a *app, bookKey, chapterArg string) (int, error) {
	book, ok := a.index.Find(bookKey)
	if !ok {
		return 0, fmt.Errorf("unknown book %q", bookKey)
	}
	chapter, err := strconv.Atoi(chapterArg)
	if err != nil {
		return 0, fmt.Errorf("chapter must be a number: %q", chapterArg)
	}
	globalIndex, ok := a.index.Locate(book.Abbrev, chapter)
	if !ok {
		return 0, fmt.Errorf("%s has no chapter %d", book.DisplayName, chapter)
	}
	return globalIndex, nil
}

func formatAssignment(a plan.Assignment) string {
	if a.Len() == 1 {
		return a.Start.String()
	}
	if a.Start.BookAbbrev == a.End.BookAbbrev {
		return fmt.Sprintf("%s-%d", a.Start, a.End.Chapter)
	}
	return fmt.Sprintf("%s - %s", a.Start, a.End)
}

func printSnapshot(w io.Writer, snap plan.Snapshot) {
	switch snap.Status {
	case plan.NotStarted:
		fmt.Fprintln(w, `No reading plan. Start one with "bibleread plan start --days N".`)
		return
	case plan.Completed:
		fmt.Fprintln(w, "Plan complete. Every chapter has been read.")
	}
	if p := snap.Progress; p != nil {
		fmt.Fprintf(w, "Day %d of %d: %d/%d chapters (%d%%)\n",
			min(p.Day, p.DurationDays), p.DurationDays, p.ChaptersRead, p.TotalChapters, p.Percent)
		switch {
		case p.Behind > 0 && snap.Status == plan.Active:
			fmt.Fprintf(w, "Due and unread: %d chapter(s)\n", p.Behind)
		case p.Ahead > 0:
			fmt.Fprintf(w, "Ahead by %d chapter(s)\n", p.Ahead)
		}
	}
	if snap.Assignment != nil {
		today := formatAssignment(*snap.Assignment)
		fmt.Fprintf(w, "Today: %s (%d chapter(s))\n", newStyles(w).title.Render(today), snap.Assignment.Len())
	}
}
