package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/legal-radar/internal/models"
)

// Store drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverMemory        = "memory"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr string
	IndexPrefix       string
}

// Worker holds configuration for the Kafka -> Elasticsearch ingest worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaConsumer  string
	NewsTopic      string
	ReportsTopic   string
	AlertsTopic    string
	GazettesTopic  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Topics maps each raw topic to the collection it feeds.
func (w *Worker) Topics() map[string]string {
	return map[string]string{
		w.NewsTopic:     models.CollectionNews,
		w.ReportsTopic:  models.CollectionReports,
		w.AlertsTopic:   models.CollectionAlerts,
		w.GazettesTopic: models.CollectionGazettes,
	}
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	StoreDriver       string
	BindAddr          string
	DefaultPage       int
	MaxPage           int
	RequestTimeout    time.Duration
	JoinBatchSize     int
	RedisAddr         string
	SummaryCacheTTL   time.Duration
	KafkaBrokers      []string
	AlertActionsTopic string
}

// Backfill configures the derived-date backfill loop.
type Backfill struct {
	Common
	Interval  time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr: getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		IndexPrefix:       getEnv("ELASTICSEARCH_INDEX_PREFIX", "legal_"),
	}
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "legal-ingest"),
		NewsTopic:      getEnv("KAFKA_NEWS_TOPIC", "news_raw"),
		ReportsTopic:   getEnv("KAFKA_REPORTS_TOPIC", "reports_raw"),
		AlertsTopic:    getEnv("KAFKA_ALERTS_TOPIC", "alerts_raw"),
		GazettesTopic:  getEnv("KAFKA_GAZETTES_TOPIC", "gazettes_raw"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if len(c.Topics()) != 4 {
		return nil, fmt.Errorf("ingest topics must be distinct")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:            loadCommon(),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", DriverElasticsearch)),
		BindAddr:          getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage:       getInt("API_PAGE_SIZE", 20),
		MaxPage:           getInt("API_MAX_PAGE_SIZE", 100),
		RequestTimeout:    getDuration("API_REQUEST_TIMEOUT", "5s"),
		JoinBatchSize:     getInt("API_JOIN_BATCH_SIZE", 200),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		SummaryCacheTTL:   getDuration("SUMMARY_CACHE_TTL", "30s"),
		KafkaBrokers:      splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		AlertActionsTopic: getEnv("ALERT_ACTIONS_TOPIC", "alert_actions"),
	}

	if c.StoreDriver != DriverElasticsearch && c.StoreDriver != DriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q", DriverElasticsearch, DriverMemory)
	}
	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("API_REQUEST_TIMEOUT must be positive")
	}
	if c.JoinBatchSize <= 0 {
		return nil, fmt.Errorf("API_JOIN_BATCH_SIZE must be positive")
	}
	if c.RedisAddr != "" && c.SummaryCacheTTL <= 0 {
		return nil, fmt.Errorf("SUMMARY_CACHE_TTL must be positive")
	}

	return c, nil
}

// LoadBackfill builds a Backfill config from environment variables.
func LoadBackfill() (*Backfill, error) {
	c := &Backfill{
		Common:    loadCommon(),
		Interval:  getDuration("BACKFILL_INTERVAL", "1h"),
		BatchSize: getInt("BACKFILL_BATCH_SIZE", 500),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("BACKFILL_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("BACKFILL_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
