package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/towerkit/towertrack"
	"github.com/towerkit/towertrack/blobstore"
	s3store "github.com/towerkit/towertrack/blobstore/s3"
	"github.com/towerkit/towertrack/codec"
	"github.com/towerkit/towertrack/fetch"
	"github.com/towerkit/towertrack/server"
	"github.com/towerkit/towertrack/store"
)

const snapshotName = "tracker.snapshot"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := towertrack.NewJSONLogger(slog.LevelInfo)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using system environment")
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *server.Config, logger *towertrack.Logger) error {
	db, err := store.OpenBadger(cfg.DataDir)
	if err != nil {
		return err
	}

	client := fetch.NewClient(cfg.Fetch.BaseURL,
		fetch.WithRateLimit(cfg.Fetch.RateLimit, int(cfg.Fetch.RateLimit)*2),
		fetch.WithParallelism(cfg.Fetch.Parallelism),
	)

	tracker := towertrack.New(
		towertrack.WithStore(db),
		towertrack.WithFetcher(client),
		towertrack.WithLogger(logger),
		towertrack.WithMetricsCollector(&towertrack.BasicMetricsCollector{}),
	)
	defer tracker.Close()

	snapshots, err := snapshotStore(ctx, cfg)
	if err != nil {
		return err
	}

	if err := loadState(ctx, tracker, snapshots, cfg, logger); err != nil {
		return err
	}

	restored, err := tracker.Restore(ctx)
	if err != nil {
		return err
	}
	logger.Info("startup complete",
		"badges", tracker.Badges().Len(),
		"users_restored", restored,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(tracker, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}

	if err := tracker.SaveSnapshot(shutdownCtx, snapshots, snapshotName); err != nil {
		logger.Warn("snapshot save failed", "error", err)
	}

	return nil
}

// snapshotStore picks the snapshot destination: S3 when a bucket is
// configured, a local directory otherwise.
func snapshotStore(ctx context.Context, cfg *server.Config) (blobstore.BlobStore, error) {
	if cfg.S3.Enabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, err
		}
		return s3store.NewStore(awss3.NewFromConfig(awsCfg), cfg.S3.Bucket, cfg.S3.Prefix), nil
	}
	local, err := blobstore.NewLocalStore(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	return local, nil
}

// loadState seeds the tracker from the last snapshot if one exists, and
// overlays the catalog file when configured.
func loadState(ctx context.Context, tracker *towertrack.Tracker, snapshots blobstore.BlobStore, cfg *server.Config, logger *towertrack.Logger) error {
	err := tracker.LoadSnapshot(ctx, snapshots, snapshotName)
	switch {
	case err == nil:
		logger.Info("snapshot loaded", "name", snapshotName)
		return nil
	case errors.Is(err, towertrack.ErrNotFound):
		logger.Info("no snapshot, starting fresh")
	default:
		return err
	}

	if cfg.CatalogPath == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.CatalogPath)
	if err != nil {
		return err
	}

	var catalog towertrack.Catalog
	if err := codec.Default.Unmarshal(data, &catalog); err != nil {
		return err
	}

	stats, err := tracker.LoadCatalog(ctx, catalog)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "path", cfg.CatalogPath, "badges", stats.Badges, "skipped", stats.Skipped)

	return nil
}
