package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "animeDB", cfg.DBName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "queries_performance.csv", cfg.ReportPath)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "animehub.yaml")
	body := "db_name: rankings\nhttp_addr: \":9090\"\nquery_timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("ANIMEHUB_MONGO_URI", "mongodb://db:27017/")
	t.Setenv("ANIMEHUB_DB_NAME", "fromenv")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017/", cfg.MongoURI)
	assert.Equal(t, "fromenv", cfg.DBName, "env overrides file")
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger("loud")
	assert.Error(t, err)

	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
