package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/legal-radar/internal/config"
	"github.com/DeafMist/legal-radar/internal/dedupe"
	"github.com/DeafMist/legal-radar/internal/elasticsearch"
	"github.com/DeafMist/legal-radar/internal/ingest"
	"github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/models"
)

type recordIndexer interface {
	IndexRecord(ctx context.Context, collection, id string, rec models.Record) error
	CreateRecord(ctx context.Context, collection, id string, rec models.Record) (bool, error)
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.IndexPrefix, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := esClient.EnsureIndices(ctx); err != nil {
		log.Warn("ensure indices", slog.Any("err", err))
	}

	topics := cfg.Topics()
	names := make([]string, 0, len(topics))
	for topic := range topics {
		names = append(names, topic)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupTopics:    names,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	// Topic is set per message so each feed gets its own dead letter queue.
	dlqWriter := &kafka.Writer{
		Addr:        kafka.TCP(cfg.KafkaBrokers...),
		MaxAttempts: 3,
	}
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.Any("topics", names),
		slog.String("group", cfg.KafkaConsumer),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		collection, ok := topics[msg.Topic]
		if !ok {
			err = fmt.Errorf("no collection for topic %q", msg.Topic)
		} else {
			err = processMessage(ctx, log, esClient, cache, collection, msg, time.Now())
		}

		if err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.String("topic", msg.Topic),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					return
				}
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.String("topic", msg.Topic),
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func dlqMessage(msg kafka.Message, cause error) kafka.Message {
	// Copy first: appending to msg.Headers could write into the fetched message.
	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	return kafka.Message{
		Topic:   msg.Topic + "_dlq",
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

// sendToDLQ retries with exponential backoff and reports whether the write
// landed. Only then may the original offset be committed.
func sendToDLQ(ctx context.Context, log *slog.Logger, w *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := dlqMessage(msg, cause)
	for attempt := 0; attempt < 5; attempt++ {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.String("topic", dlqMsg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			log.Info("context canceled during DLQ retry")
			return false
		}
	}
	return false
}

func processMessage(ctx context.Context, log *slog.Logger, idx recordIndexer, cache *dedupe.Cache, collection string, msg kafka.Message, now time.Time) error {
	doc, err := ingest.Prepare(collection, msg.Value, now)
	if err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if cache.Unchanged(doc.ID, doc.Fingerprint) {
		log.Debug("duplicate document", slog.String("collection", collection), slog.String("id", doc.ID))
		return nil
	}

	// Re-delivered alerts must not reset a triage decision.
	if collection == models.CollectionAlerts {
		created, err := idx.CreateRecord(ctx, collection, doc.ID, doc.Record)
		if err != nil {
			return err
		}
		if !created {
			log.Debug("alert already stored", slog.String("id", doc.ID))
		}
	} else if err := idx.IndexRecord(ctx, collection, doc.ID, doc.Record); err != nil {
		return err
	}

	cache.Remember(doc.ID, doc.Fingerprint)
	log.Info("indexed document", slog.String("collection", collection), slog.String("id", doc.ID))
	return nil
}
