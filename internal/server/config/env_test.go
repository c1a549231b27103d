package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func Test_parseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, mapLookup(map[string]string{
		"RECIPESHARE_HTTP_ADDR":         ":8181",
		"RECIPESHARE_DATABASE_DSN":      " env-dsn ",
		"RECIPESHARE_STORAGE_BACKEND":   "memory",
		"RECIPESHARE_MAX_UPLOAD_MB":     "8",
		"RECIPESHARE_RATE_LIMIT_RPS":    "0.5",
		"RECIPESHARE_RATE_LIMIT_BURST":  "2",
		"RECIPESHARE_PROFILE_CACHE_TTL": "90s",
		"RECIPESHARE_SHUTDOWN_TIMEOUT":  "3s",
		"RECIPESHARE_CORS_ORIGINS":      "https://a.example, ,https://b.example",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.EndpointAddrHTTP)
	assert.Equal(t, "env-dsn", cfg.DatabaseDSN)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.Equal(t, 2, cfg.RateLimitBurst)
	assert.Equal(t, 90*time.Second, cfg.ProfileCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func Test_parseEnv_InvalidNumbers(t *testing.T) {
	for _, key := range []string{
		"RECIPESHARE_MAX_UPLOAD_MB",
		"RECIPESHARE_RATE_LIMIT_RPS",
		"RECIPESHARE_RATE_LIMIT_BURST",
		"RECIPESHARE_PROFILE_CACHE_TTL",
		"RECIPESHARE_SHUTDOWN_TIMEOUT",
	} {
		t.Run(key, func(t *testing.T) {
			cfg := &Config{}
			assert.Error(t, parseEnv(cfg, mapLookup(map[string]string{key: "x"})))
		})
	}
}
