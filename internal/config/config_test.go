package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/legal-radar/internal/config"
)

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX_PREFIX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "legal_", cfg.IndexPrefix)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "legal-ingest", cfg.KafkaConsumer)
	require.Equal(t, map[string]string{
		"news_raw":     "news",
		"reports_raw":  "reports",
		"alerts_raw":   "alerts",
		"gazettes_raw": "gazettes",
	}, cfg.Topics())
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX_PREFIX", "staging_")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("KAFKA_NEWS_TOPIC", "livelaw")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "staging_", cfg.IndexPrefix)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, "news", cfg.Topics()["livelaw"])
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadWorkerRejectsSharedTopics(t *testing.T) {
	t.Setenv("KAFKA_NEWS_TOPIC", "raw")
	t.Setenv("KAFKA_REPORTS_TOPIC", "raw")

	_, err := config.LoadWorker()
	require.Error(t, err)
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SUMMARY_CACHE_TTL", "1m")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 15, cfg.DefaultPage)
	require.Equal(t, 200, cfg.MaxPage)
	require.Equal(t, "http://api-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, config.DriverMemory, cfg.StoreDriver)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, time.Minute, cfg.SummaryCacheTTL)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "alert_actions", cfg.AlertActionsTopic)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadAPIValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "mongo"}},
		{name: "page above max", env: map[string]string{"API_PAGE_SIZE": "50", "API_MAX_PAGE_SIZE": "10"}},
		{name: "negative page", env: map[string]string{"API_PAGE_SIZE": "-1"}},
		{name: "zero join batch", env: map[string]string{"API_JOIN_BATCH_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadAPI()
			require.Error(t, err)
		})
	}
}

func TestLoadBackfill(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://bf-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX_PREFIX", "bf_")
	t.Setenv("BACKFILL_INTERVAL", "12h")
	t.Setenv("BACKFILL_BATCH_SIZE", "123")

	cfg, err := config.LoadBackfill()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://bf-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "bf_", cfg.IndexPrefix)
}
