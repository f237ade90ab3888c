// Package main provides the CLI entry point for tumbler.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/tumbler-go/internal/config"
	"github.com/ukaji3/tumbler-go/internal/logging"
	"github.com/ukaji3/tumbler-go/pkg/tumbler"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/history"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/output"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOut    bool
	pretty     bool
	outputPath string

	// Root flags
	seedFlag   string
	random     bool
	hideLabels bool
	reveal     bool
	snapshot   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tumbler [source]",
	Short: "Draw a seeded word combination from a spreadsheet",
	Long: `tumbler loads word columns from a CSV or xlsx source (a URL or a local
file), draws one word per column from a seeded generator and prints the
result. The same source and seed always produce the same words.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print JSON instead of styled text")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output file path for JSON (default: stdout)")

	rootCmd.Flags().StringVar(&seedFlag, "seed", "", "Fixed seed (leading integer, negatives wrap)")
	rootCmd.Flags().BoolVar(&random, "random", false, "Draw a new seed even if --seed is given")
	rootCmd.Flags().BoolVar(&hideLabels, "hide-labels", false, "Hide column labels")
	rootCmd.Flags().BoolVar(&reveal, "reveal", false, "Reveal columns one at a time")
	rootCmd.Flags().BoolVar(&snapshot, "snapshot", false, "Record the result in the history database")

	rootCmd.AddCommand(embedCmd, serveCmd, replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err = logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Verbose:     verbose,
	})
	return err
}

func run(cmd *cobra.Command, args []string) error {
	loc := tumbler.Locator{
		Random:  random,
		Display: tumbler.Display{HideLabels: hideLabels},
	}
	if len(args) > 0 {
		loc.Sheet = args[0]
	}
	if seedFlag != "" {
		seed, ok := tumbler.ParseSeed(seedFlag)
		if !ok {
			return fmt.Errorf("invalid seed: %s", seedFlag)
		}
		loc.Seed = &seed
	}

	setters := []tumbler.Option{tumbler.WithLogger(logger)}
	if snapshot {
		if cfg.History.Path == "" {
			logger.Warn("history.path is not set, snapshot is kept in memory only")
		}
		store, closeStore, err := openStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer closeStore()
		// Each run starts a new session; Init must not overwrite the
		// previous run's entries.
		setters = append(setters, tumbler.WithHistory(history.AppendOnly(store)))
	}
	if !jsonOut {
		setters = append(setters, tumbler.WithRenderer(newTermRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), reveal)))
	}

	sess := tumbler.NewSession(tumbler.NewFetcher(cfg.FetchTimeout), cfg.TumblerOptions(), setters...)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	words, err := sess.Init(ctx, loc)
	if err == nil && words == nil {
		_, err = sess.Regenerate(ctx, false)
	}
	if err != nil {
		return err
	}

	if !jsonOut {
		return nil
	}
	result := sess.Result()
	if cfg.Server.EmbedBase != "" {
		result.Embed = sess.EmbedURL(cfg.Server.EmbedBase, tumbler.EmbedOptions{
			UseCurrentSource: true,
			Display:          loc.Display,
		})
	}
	jsonData, err := output.ToJSON(&result, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), jsonData)
}

// openStore opens the history database at path. An empty path yields an
// in-memory store that lives as long as the process.
func openStore(path string) (history.Store, func(), error) {
	if path == "" {
		return history.NewMemory(), func() {}, nil
	}
	store, err := history.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close history database", zap.Error(err))
		}
	}, nil
}

func writeOutput(w io.Writer, data []byte) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(w, string(data))
	return err
}
