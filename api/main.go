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

	"github.com/DeafMist/legal-radar/internal/alerts"
	"github.com/DeafMist/legal-radar/internal/cache"
	"github.com/DeafMist/legal-radar/internal/config"
	"github.com/DeafMist/legal-radar/internal/elasticsearch"
	"github.com/DeafMist/legal-radar/internal/events"
	"github.com/DeafMist/legal-radar/internal/httpapi"
	"github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/metrics"
	"github.com/DeafMist/legal-radar/internal/search"
	"github.com/DeafMist/legal-radar/internal/sources"
	"github.com/DeafMist/legal-radar/internal/store"
	"github.com/DeafMist/legal-radar/internal/store/memory"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	metrics.Register()

	backend, health, err := openStore(ctx, log, cfg)
	if err != nil {
		log.Error("init store", slog.Any("err", err))
		os.Exit(1)
	}

	news := sources.NewNews(backend)
	reports := sources.NewReports(backend)
	gazette := sources.NewGazette(backend, cfg.JoinBatchSize)

	var alertOpts []alerts.Option
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.AlertActionsTopic)
		defer writer.Close()
		alertOpts = append(alertOpts, alerts.WithPublisher(events.NewPublisher(writer)))
		log.Info("publishing alert transitions", slog.String("topic", cfg.AlertActionsTopic))
	}

	deps := httpapi.Deps{
		News:    news,
		Reports: reports,
		Alerts:  alerts.NewService(backend, gazette, log, alertOpts...),
		Search:  search.NewService(news, reports, gazette, metrics.SearchObserver{}, log),
		Health:  health,
	}

	if cfg.RedisAddr != "" {
		redis, err := cache.NewRedis(cfg.RedisAddr, cfg.SummaryCacheTTL)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = redis.Ping(pingCtx)
			cancel()
			if err != nil {
				redis.Close()
			}
		}
		if err != nil {
			log.Warn("summary cache disabled", slog.Any("err", err))
		} else {
			defer redis.Close()
			deps.Cache = redis
			log.Info("summary cache enabled", slog.String("addr", cfg.RedisAddr))
		}
	}

	handler := httpapi.New(deps, httpapi.Options{
		DefaultPage:    cfg.DefaultPage,
		MaxPage:        cfg.MaxPage,
		RequestTimeout: cfg.RequestTimeout,
	}, log).Routes()

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.String("store", cfg.StoreDriver),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// openStore returns the configured backend and its health probe.
func openStore(ctx context.Context, log *slog.Logger, cfg *config.API) (store.Store, func(context.Context) error, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is not persisted")
		return memory.New(), nil, nil
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.IndexPrefix, log)
	if err != nil {
		return nil, nil, err
	}

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := esClient.EnsureIndices(bootCtx); err != nil {
		log.Warn("ensure indices", slog.Any("err", err))
	}

	return esClient, esClient.Health, nil
}
