package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
store:
  driver: memory
workers:
  resolve-data-query:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "homelead", cfg.Database.Mongo.Database)
	assert.Equal(t, 10, cfg.Query.DefaultLimit)
	assert.Equal(t, 10, cfg.Query.DisplayLimit)
	assert.Equal(t, "https://api.together.xyz/v1", cfg.APIs.LLM.BaseURL)
	assert.Equal(t, "meta-llama/Llama-3-8b-chat-hf", cfg.APIs.LLM.Model)
	assert.Equal(t, 200, cfg.APIs.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.APIs.LLM.TopP, 0.0001)
	assert.False(t, cfg.APIs.LLM.Enabled())
	assert.Equal(t, ":8080", cfg.Server.Address)

	w := cfg.Workers["resolve-data-query"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_EnvFallbacks(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "tg-key")
	t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
	t.Setenv("MONGODB_DB", "homelead_test")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
store:
  driver: Mongo
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "tg-key", cfg.APIs.LLM.APIKey)
	assert.True(t, cfg.APIs.LLM.Enabled())
	assert.Equal(t, "mongodb://mongo:27017", cfg.Database.Mongo.URI)
	assert.Equal(t, "homelead_test", cfg.Database.Mongo.Database)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("ES_NODE", "http://es:9200")

	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
store:
  driver: elasticsearch
database:
  elasticsearch:
    addresses:
      - http://es-a:9200
    url: ${ES_NODE}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://es:9200", cfg.Database.Elasticsearch.GetURL())
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Camunda: CamundaConfig{BrokerAddress: "localhost:26500"},
			Store:   StoreConfig{Driver: StoreDriverMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "memory store is valid", mutate: func(*Config) {}},
		{
			name:    "missing broker",
			mutate:  func(c *Config) { c.Camunda.BrokerAddress = "" },
			wantErr: "camunda.broker_address",
		},
		{
			name:    "mongo without uri",
			mutate:  func(c *Config) { c.Store.Driver = StoreDriverMongo },
			wantErr: "database.mongo.uri",
		},
		{
			name:    "elasticsearch without address",
			mutate:  func(c *Config) { c.Store.Driver = StoreDriverElasticsearch },
			wantErr: "database.elasticsearch",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "cassandra" },
			wantErr: "cassandra",
		},
		{
			name:    "audit without postgres",
			mutate:  func(c *Config) { c.Query.AuditEnabled = true },
			wantErr: "database.postgres.host",
		},
		{
			name:    "cache without redis",
			mutate:  func(c *Config) { c.APIs.LLM.CacheTTL = 60000 },
			wantErr: "database.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"parse-user-intent": {Enabled: false, Timeout: 5000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "parse-user-intent"))
	assert.True(t, IsWorkerEnabled(cfg, "resolve-data-query"))
	assert.Equal(t, 5000, GetWorkerConfig(cfg, "parse-user-intent").Timeout)
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "unknown").Timeout)
}
