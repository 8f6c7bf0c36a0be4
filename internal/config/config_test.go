package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("CHAIN_READER_URL", "http://localhost:9090")
	t.Setenv("HISTORY_BASE_URL", "http://localhost:9091")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	require.Equal(t, "config/group.yaml", cfg.Catalog.GroupConfigPath)
	require.Equal(t, 10, cfg.Chain.TimeoutSeconds)
	require.Equal(t, 10, cfg.History.TimeoutSeconds)
	require.Equal(t, 30, cfg.Cache.TTLSeconds)
	require.Empty(t, cfg.Redis.Addr)
}

func TestLoadRequiresUpstreamURLs(t *testing.T) {
	t.Setenv("CHAIN_READER_URL", "")
	t.Setenv("HISTORY_BASE_URL", "http://localhost:9091")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CHAIN_READER_URL", "http://localhost:9090")
	t.Setenv("HISTORY_BASE_URL", "")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("HISTORY_TIMEOUT_SECONDS", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.HTTP.Port)
	require.Equal(t, 3, cfg.History.TimeoutSeconds)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadRejectsBadInt(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}
