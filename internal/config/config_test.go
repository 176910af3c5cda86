package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http_addr: \":8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "https://base.blockscout.com", cfg.Blockscout.URL)
	assert.Equal(t, 20, cfg.Blockscout.MaxPages)
	assert.Equal(t, 5*time.Minute, cfg.Cache.StatsTTL)
	assert.Equal(t, 6*time.Hour, cfg.Cache.WrappedTTL)
	assert.False(t, cfg.CovalentEnabled())
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.ClickHouseEnabled())
	assert.False(t, cfg.MinIOEnabled())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
timeout: 5s
covalent:
  api_key: secret
cache:
  wrapped_ttl: 2h
  redis_addr: localhost:6379
clickhouse:
  addr: [localhost:9000]
names:
  "0xABC": alice.base
`)
	t.Setenv("WRAPPED_HTTP_ADDR", ":9090")
	t.Setenv("WRAPPED_MINIO_ENDPOINT", "localhost:9001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.CovalentEnabled())
	assert.Equal(t, 2*time.Hour, cfg.Cache.WrappedTTL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, []string{"localhost:9000"}, cfg.ClickHouse.Addr)
	assert.True(t, cfg.MinIOEnabled())
	assert.Equal(t, "wrapped-reports", cfg.MinIO.Bucket)
	assert.Equal(t, "alice.base", cfg.Names["0xabc"])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogLevel:   "info",
			HTTPAddr:   ":8080",
			Timeout:    time.Second,
			Blockscout: BlockscoutConfig{URL: "https://base.blockscout.com", RPS: 5, MaxPages: 20},
			Cache:      CacheConfig{Capacity: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "valid", mutate: func(*Config) {}, valid: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "empty http addr", mutate: func(c *Config) { c.HTTPAddr = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "no provider", mutate: func(c *Config) { c.Blockscout.URL = "" }},
		{
			name: "covalent only",
			mutate: func(c *Config) {
				c.Blockscout.URL = ""
				c.Covalent = CovalentConfig{URL: "https://api.covalenthq.com", APIKey: "key", RPS: 1}
			},
			valid: true,
		},
		{name: "zero rps", mutate: func(c *Config) { c.Blockscout.RPS = 0 }},
		{name: "zero max pages", mutate: func(c *Config) { c.Blockscout.MaxPages = 0 }},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.StatsTTL = -time.Second }},
		{name: "zero capacity", mutate: func(c *Config) { c.Cache.Capacity = 0 }},
		{name: "minio without bucket", mutate: func(c *Config) { c.MinIO.Endpoint = "localhost:9000" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}
