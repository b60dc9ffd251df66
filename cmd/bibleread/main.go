package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bibleread/internal/bible"
	"bibleread/internal/canon"
	"bibleread/internal/config"
	"bibleread/internal/logging"
	"bibleread/internal/plan"
	"bibleread/internal/store"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bibleread",
	Short: "Bible reader with a day-by-day reading plan",
	Long: `bibleread reads the Bible chapter by chapter and keeps a reading plan
that spreads all chapters evenly over a chosen number of days.

Run "bibleread serve" for the JSON API, or use the plan, read and search
commands directly from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(serveCmd, planCmd, readCmd, randomCmd, searchCmd, highlightCmd, buildCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the reader wired from configuration.
type app struct {
	bible      *bible.Dataset
	index      *canon.Index
	db         *store.DB
	tracker    *plan.Tracker
	highlights *store.Highlights
}

// openApp loads the dataset, derives the chapter index from it and opens the
// database. Callers must Close the result.
func openApp() (*app, error) {
	ds, err := bible.Load(cfg.Data.BiblePath)
	if err != nil {
		return nil, err
	}
	ix, err := canon.Build(ds)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", cfg.Data.BiblePath, err)
	}
	logger.Debug("Dataset loaded",
		zap.String("path", cfg.Data.BiblePath),
		zap.Int("books", len(ix.Books())),
		zap.Int("chapters", ix.Len()))

	db, err := store.Open(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		bible:      ds,
		index:      ix,
		db:         db,
		tracker:    plan.NewTracker(db.Plans(), plan.NewScheduler(ix), logger),
		highlights: db.Highlights(ix),
	}, nil
}

func (a *app) Close() error { return a.db.Close() }

func presets() []plan.Preset {
	out := make([]plan.Preset, len(cfg.Plan.Presets))
	for i, p := range cfg.Plan.Presets {
		out[i] = plan.Preset{Label: p.Label, Days: p.Days}
	}
	return out
}
