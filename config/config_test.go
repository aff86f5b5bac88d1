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
	path := filepath.Join(t.TempDir(), "autovis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
store:
  type: redis
  addr: redis:6379
  db: 2
  ttl: 1h
rules:
  files:
    - rules/custom.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, StoreRedis, cfg.Store.Type)
	assert.Equal(t, "redis:6379", cfg.Store.Addr)
	assert.Equal(t, 2, cfg.Store.DB)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "autovis:", cfg.Store.KeyPrefix)
	assert.Equal(t, []string{"rules/custom.yaml"}, cfg.Rules.Files)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("AUTOVIS_LOG_LEVEL", "warn")
	t.Setenv("AUTOVIS_STORE_KEY_PREFIX", "views:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "views:", cfg.Store.KeyPrefix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"log level", "log:\n  level: verbose\n", "invalid log level"},
		{"log format", "log:\n  format: xml\n", "invalid log format"},
		{"file output without path", "log:\n  output: file\n", "log.file_path"},
		{"store type", "store:\n  type: etcd\n", "invalid store type"},
		{"negative ttl", "store:\n  ttl: -1s\n", "invalid store.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
