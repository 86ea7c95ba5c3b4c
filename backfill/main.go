package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/legal-radar/internal/config"
	"github.com/DeafMist/legal-radar/internal/elasticsearch"
	"github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/models"
)

// Collections with a native date field. Alerts carry real date types.
var dated = []string{models.CollectionNews, models.CollectionReports, models.CollectionGazettes}

type deriver interface {
	BackfillDerivedDates(ctx context.Context, collection string, batchSize int) (int64, error)
}

func main() {
	log := logger.New("backfill")
	cfg, err := config.LoadBackfill()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient := connect(ctx, log, cfg)

	if err := esClient.EnsureIndices(ctx); err != nil {
		log.Warn("ensure indices", slog.Any("err", err))
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("backfill job running",
		slog.Duration("interval", cfg.Interval),
		slog.Int("batch_size", cfg.BatchSize),
	)

	runOnce(ctx, log, esClient, cfg.BatchSize)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, esClient, cfg.BatchSize)
		}
	}
}

// connect retries with exponential backoff until Elasticsearch answers a ping.
func connect(ctx context.Context, log *slog.Logger, cfg *config.Backfill) *elasticsearch.Client {
	const maxRetries = 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.IndexPrefix, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = esClient.Ping(pingCtx)
			cancel()
			if err == nil {
				log.Info("connected to elasticsearch")
				return esClient
			}
		}
		log.Warn("elasticsearch unavailable, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", maxRetries),
			slog.Duration("retry_in", retryDelay),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			os.Exit(0)
		}
		retryDelay = min(retryDelay*2, 30*time.Second)
	}

	log.Error("failed to connect to elasticsearch after retries")
	os.Exit(1)
	return nil
}

func runOnce(ctx context.Context, log *slog.Logger, es deriver, batchSize int) int64 {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var total int64
	for _, collection := range dated {
		n, err := es.BackfillDerivedDates(subCtx, collection, batchSize)
		total += n
		if err != nil {
			log.Warn("backfill run failed (will retry on next interval)",
				slog.String("collection", collection),
				slog.Any("err", err),
			)
			continue
		}
		if n > 0 {
			log.Info("backfill run completed", slog.String("collection", collection), slog.Int64("updated", n))
		} else {
			log.Debug("backfill run completed, nothing to stamp", slog.String("collection", collection))
		}
	}
	return total
}
