package config_test

import (
	"testing"
	"time"

	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_DATABASE", "portal")
	t.Setenv("DB_USER", "portal")
	t.Setenv("AUTHZ_URL", "http://localhost:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client-123")
	t.Setenv("STORAGE_BASE_URL", "https://files.barangay.test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBType)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.Equal(t, 3, cfg.PriorityOpenLimit)
	assert.Equal(t, 5*time.Minute, cfg.ContentCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.LayoutCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8088")
	t.Setenv("PRIORITY_OPEN_LIMIT", "5")
	t.Setenv("CONTENT_CACHE_TTL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, 5, cfg.PriorityOpenLimit)
	assert.Equal(t, 30*time.Second, cfg.ContentCacheTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadMissingRequired(t *testing.T) {
	cases := []string{"DB_DATABASE", "AUTHZ_URL", "AUTHZ_CLIENT_ID", "STORAGE_BASE_URL"}

	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), missing)
		})
	}
}

func TestLoadSqliteSkipsUser(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_USER", "")

	_, err := config.Load()
	require.NoError(t, err)
}
