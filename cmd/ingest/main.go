// Command ingest is the KBO data ingestion CLI.
//
// Usage:
//
//	kbo-ingest enqueue --players 76290,51001 --season 2024 --series regular --types batting,pitching,fielding,profile
//	kbo-ingest crawl --players 76290 --series regular --types batting
//	kbo-ingest queue process --max 100 --workers 4
//	kbo-ingest queue status
//	kbo-ingest mirror --path kbo_mirror.db
//	kbo-ingest watch --schedule "0 3 * * *"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/rkdansdlf/kbo-data/internal/config"
	"github.com/rkdansdlf/kbo-data/internal/db"
	"github.com/rkdansdlf/kbo-data/internal/fetch"
	"github.com/rkdansdlf/kbo-data/internal/mirror"
	"github.com/rkdansdlf/kbo-data/internal/pipeline"
	"github.com/rkdansdlf/kbo-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "kbo-ingest",
		Short: "KBO data ingestion CLI",
	}

	root.AddCommand(enqueueCmd())
	root.AddCommand(crawlCmd())
	root.AddCommand(queueCmd())
	root.AddCommand(mirrorCmd())
	root.AddCommand(watchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Flag parsing helpers
// --------------------------------------------------------------------------

func parsePlayerIDs(raw string) ([]int, error) {
	if raw == "" {
		return nil, fmt.Errorf("--players is required")
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid player id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseRecordTypes(raw string) ([]string, error) {
	known := map[string]bool{
		store.TypeBatting: true, store.TypePitching: true,
		store.TypeFielding: true, store.TypeProfile: true,
	}
	var types []string
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if !known[t] {
			return nil, fmt.Errorf("unknown record type %q", t)
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("--types is required")
	}
	return types, nil
}

func validateSeries(series string) error {
	if _, ok := config.SeriesRegistry[series]; !ok {
		return fmt.Errorf("unknown series %q", series)
	}
	return nil
}

// --------------------------------------------------------------------------
// enqueue command
// --------------------------------------------------------------------------

func enqueueCmd() *cobra.Command {
	var (
		players string
		season  int
		series  string
		types   string
	)
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue crawl work for players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				ids, err := parsePlayerIDs(players)
				if err != nil {
					return err
				}
				recordTypes, err := parseRecordTypes(types)
				if err != nil {
					return err
				}
				if err := validateSeries(series); err != nil {
					return err
				}

				queue := store.NewQueue(pool.Pool)
				queued := 0
				for _, id := range ids {
					for _, t := range recordTypes {
						if err := queue.Enqueue(ctx, id, season, series, t); err != nil {
							return fmt.Errorf("enqueue player %d %s: %w", id, t, err)
						}
						queued++
					}
				}
				logger.Info("Enqueue finished", "players", len(ids), "units", queued)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&players, "players", "", "Comma-separated player IDs")
	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "Season year")
	cmd.Flags().StringVar(&series, "series", "regular", "Series (regular, exhibition, playoff, korean_series, futures)")
	cmd.Flags().StringVar(&types, "types", "batting,pitching,fielding,profile", "Record types to queue")
	return cmd
}

// --------------------------------------------------------------------------
// crawl command — fetch and process directly, bypassing the queue
// --------------------------------------------------------------------------

func crawlCmd() *cobra.Command {
	var (
		players string
		series  string
		types   string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch and ingest player pages immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				ids, err := parsePlayerIDs(players)
				if err != nil {
					return err
				}
				recordTypes, err := parseRecordTypes(types)
				if err != nil {
					return err
				}
				if err := validateSeries(series); err != nil {
					return err
				}

				client := fetch.New(cfg, logger)
				proc := pipeline.NewProcessor(store.NewWriter(pool.Pool), logger)
				if workers == 0 {
					workers = cfg.Workers
				}

				start := time.Now()
				var result store.RunResult
				var sources []pipeline.PageSource
				for _, id := range ids {
					for _, t := range recordTypes {
						src, err := client.RecordPage(ctx, id, series, t)
						if err != nil {
							result.AddErrorf("fetch player %d %s: %v", id, t, err)
							continue
						}
						if src == nil {
							result.NoData++
							continue
						}
						sources = append(sources, *src)
					}
				}
				result.Add(proc.Run(ctx, sources, workers))
				finished := time.Now()

				runID, err := store.NewRunLog(pool.Pool).Record(ctx, "crawl", start, finished, &result)
				if err != nil {
					logger.Error("record crawl run", "error", err)
				}
				logger.Info("Crawl finished", "run_id", runID,
					"duration", finished.Sub(start).Round(time.Second), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("crawl error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&players, "players", "", "Comma-separated player IDs")
	cmd.Flags().StringVar(&series, "series", "regular", "Series (regular, exhibition, playoff, korean_series, futures)")
	cmd.Flags().StringVar(&types, "types", "batting,pitching,fielding,profile", "Record types to fetch")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent worker count (0 = config default)")
	return cmd
}

// --------------------------------------------------------------------------
// queue command
// --------------------------------------------------------------------------

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Operate the persisted crawl queue",
	}
	cmd.AddCommand(queueProcessCmd())
	cmd.AddCommand(queueStatusCmd())
	return cmd
}

func queueProcessCmd() *cobra.Command {
	var (
		maxItems   int
		workers    int
		maxRetries int
		staleAfter time.Duration
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Claim and ingest pending queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				queue := store.NewQueue(pool.Pool)
				if released, err := queue.ReleaseStale(ctx, staleAfter); err != nil {
					logger.Error("release stale items", "error", err)
				} else if released > 0 {
					logger.Info("Released stale queue items", "count", released)
				}

				client := fetch.New(cfg, logger)
				proc := pipeline.NewProcessor(store.NewWriter(pool.Pool), logger)
				if workers == 0 {
					workers = cfg.Workers
				}

				start := time.Now()
				result := proc.ProcessQueue(ctx, queue, client, maxItems, maxRetries, workers)
				finished := time.Now()

				runID, err := store.NewRunLog(pool.Pool).Record(ctx, "queue", start, finished, &result)
				if err != nil {
					logger.Error("record queue run", "error", err)
				}
				logger.Info("Queue process finished", "run_id", runID,
					"duration", finished.Sub(start).Round(time.Second), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("queue error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&maxItems, "max", 100, "Maximum queue items to claim")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent worker count (0 = config default)")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Skip items with this many failed attempts")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", 30*time.Minute, "Reclaim items stuck in processing longer than this")
	return cmd
}

func queueStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pending queue depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				pending, err := store.NewQueue(pool.Pool).PendingCount(ctx)
				if err != nil {
					return err
				}
				logger.Info("Queue status", "pending", pending)
				return nil
			})
		},
	}
	return cmd
}

// --------------------------------------------------------------------------
// mirror command
// --------------------------------------------------------------------------

func mirrorCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Export canonical tables to a SQLite snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if path == "" {
					path = cfg.MirrorPath
				}
				exporter := mirror.NewExporter(mirror.NewPGSource(pool.Pool), logger)
				start := time.Now()
				result, err := exporter.Export(ctx, path)
				if err != nil {
					return fmt.Errorf("mirror export: %w", err)
				}
				logger.Info("Mirror finished", "path", path,
					"players", result.Players, "batting", result.Batting,
					"pitching", result.Pitching, "fielding", result.Fielding,
					"duration", time.Since(start).Round(time.Second))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "SQLite output path (empty = config default)")
	return cmd
}

// --------------------------------------------------------------------------
// watch command — scheduled queue processing plus mirror refresh
// --------------------------------------------------------------------------

func watchCmd() *cobra.Command {
	var (
		schedule   string
		maxItems   int
		maxRetries int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process the queue on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				queue := store.NewQueue(pool.Pool)
				client := fetch.New(cfg, logger)
				proc := pipeline.NewProcessor(store.NewWriter(pool.Pool), logger)
				runLog := store.NewRunLog(pool.Pool)
				exporter := mirror.NewExporter(mirror.NewPGSource(pool.Pool), logger)

				c := cron.New()
				_, err := c.AddFunc(schedule, func() {
					start := time.Now()
					result := proc.ProcessQueue(ctx, queue, client, maxItems, maxRetries, cfg.Workers)
					finished := time.Now()
					if _, err := runLog.Record(ctx, "watch", start, finished, &result); err != nil {
						logger.Error("record watch run", "error", err)
					}
					if _, err := exporter.Export(ctx, cfg.MirrorPath); err != nil {
						logger.Error("mirror export", "error", err)
					}
				})
				if err != nil {
					return fmt.Errorf("invalid schedule %q: %w", schedule, err)
				}

				logger.Info("Watch started", "schedule", schedule)
				c.Start()
				<-ctx.Done()
				logger.Info("Watch stopping")
				stopCtx := c.Stop()
				<-stopCtx.Done()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "0 3 * * *", "Cron schedule")
	cmd.Flags().IntVar(&maxItems, "max", 500, "Maximum queue items per run")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Skip items with this many failed attempts")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runIngest handles config loading, DB connection, and context cancellation.
func runIngest(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
