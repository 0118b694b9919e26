// Command ingest is the HoopLens dataset collection CLI.
//
// Usage:
//
//	hooplens-ingest collect
//	hooplens-ingest collect --seasons 2022-23,2023-24
//	hooplens-ingest snapshots
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hooplens/hooplens/internal/collect"
	"github.com/hooplens/hooplens/internal/config"
	"github.com/hooplens/hooplens/internal/storage"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "hooplens-ingest",
		Short: "HoopLens dataset collection CLI",
	}

	root.AddCommand(collectCmd())
	root.AddCommand(snapshotsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// collect command
// --------------------------------------------------------------------------

func collectCmd() *cobra.Command {
	var (
		seasons []string
		prefix  string
		rpm     int
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect NBA data from BallDontLie and save a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, store storage.Store) error {
				if cfg.BDLAPIKey == "" {
					return fmt.Errorf("BALLDONTLIE_API_KEY is required")
				}
				if len(seasons) == 0 {
					seasons = cfg.SeasonsList
				}
				if prefix == "" {
					prefix = cfg.DatasetPrefix
				}

				client := collect.NewClient("", cfg.BDLAPIKey, rpm, logger)
				collector := collect.NewCollector(client, logger)

				start := time.Now()
				ds, result := collector.CollectDataset(ctx, seasons)
				logger.Info("Collection finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("collect error", "error", e)
				}
				if ds.Empty() {
					return fmt.Errorf("nothing collected, not saving a snapshot")
				}

				if err := store.Save(ctx, ds, prefix); err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				logger.Info("Snapshot saved", "prefix", prefix, "tables", ds.TableNames())
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&seasons, "seasons", nil, "Seasons to collect (YYYY-YY); default from SEASONS_LIST")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Snapshot prefix; default from DATASET_PREFIX")
	cmd.Flags().IntVar(&rpm, "rpm", 60, "BallDontLie request budget per minute")
	return cmd
}

// --------------------------------------------------------------------------
// snapshots command
// --------------------------------------------------------------------------

func snapshotsCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored dataset snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, store storage.Store) error {
				if prefix == "" {
					prefix = cfg.DatasetPrefix
				}
				snaps, err := store.Snapshots(ctx, prefix)
				if err != nil {
					return fmt.Errorf("list snapshots: %w", err)
				}
				if len(snaps) == 0 {
					logger.Info("No snapshots found", "prefix", prefix)
					return nil
				}
				for _, s := range snaps {
					logger.Info("Snapshot",
						"table", s.Table,
						"location", s.Location,
						"modified", s.Modified.UTC().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Snapshot prefix; default from DATASET_PREFIX")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithStore handles config loading, storage setup, and context cancellation.
func runWithStore(fn func(ctx context.Context, cfg *config.Config, store storage.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store storage.Store
	switch cfg.StorageBackend {
	case config.BackendS3:
		store, err = storage.NewObjectStore(ctx, storage.ObjectStoreConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Secure:    cfg.S3Secure,
			Bucket:    cfg.BucketName(),
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize object storage: %w", err)
		}
	default:
		store = storage.NewLocalStore(cfg.DataDir, logger)
	}

	return fn(ctx, cfg, store)
}
