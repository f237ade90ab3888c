package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/tumbler-go/pkg/tumbler"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/output"
)

var (
	replayID     string
	saveSnapshot string
)

var replayCmd = &cobra.Command{
	Use:   "replay [snapshot.json]",
	Short: "Replay a recorded snapshot without fetching its source",
	Long: `replay reinstates a snapshot from a JSON file or, with --id, from the
history database, and prints the words it held.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayID, "id", "", "Snapshot ID in the history database")
	replayCmd.Flags().StringVar(&saveSnapshot, "save", "", "Also write the snapshot as JSON to this path")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	snap, err := loadSnapshot(ctx, args)
	if err != nil {
		return err
	}

	var setters []tumbler.Option
	setters = append(setters, tumbler.WithLogger(logger))
	if !jsonOut {
		setters = append(setters, tumbler.WithRenderer(newTermRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)))
	}
	sess := tumbler.NewSession(tumbler.NewFetcher(cfg.FetchTimeout), cfg.TumblerOptions(), setters...)
	if _, err := sess.RestoreHistoryEntry(snap); err != nil {
		return err
	}

	if saveSnapshot != "" {
		data, err := output.SnapshotToJSON(&snap, true)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := os.WriteFile(saveSnapshot, data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}

	if !jsonOut {
		return nil
	}
	result := sess.Result()
	result.SnapshotID = snap.ID
	jsonData, err := output.ToJSON(&result, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), jsonData)
}

func loadSnapshot(ctx context.Context, args []string) (models.Snapshot, error) {
	switch {
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
		}
		snap, err := output.ParseSnapshot(data)
		if err != nil {
			return models.Snapshot{}, err
		}
		return *snap, nil
	case replayID != "":
		if cfg.History.Path == "" {
			return models.Snapshot{}, errors.New("--id needs history.path (or TUMBLER_HISTORY_PATH)")
		}
		store, closeStore, err := openStore(cfg.History.Path)
		if err != nil {
			return models.Snapshot{}, err
		}
		defer closeStore()
		return store.Get(ctx, replayID)
	default:
		return models.Snapshot{}, errors.New("a snapshot file or --id is required")
	}
}
