package config

import (
	"testing"
	"time"

	"cardiorisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "")
	t.Setenv("DATASET_FILE", "")
	t.Setenv("MODELS_DIR", "")
	t.Setenv("PORT", "")
	t.Setenv("API_RATE_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8090", cfg.API.Port)
	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "data/heart-disease.csv", cfg.Data.File)
	assert.Equal(t, "data/models", cfg.Models.Dir)
	assert.Equal(t, 20.0, cfg.API.RateLimit)
	assert.Equal(t, 15*time.Second, cfg.API.WriteTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATASET_FILE", "/tmp/heart.xlsx")
	t.Setenv("API_RATE_BURST", "7")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("API_WRITE_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/tmp/heart.xlsx", cfg.Data.File)
	assert.Equal(t, 7, cfg.API.RateBurst)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 3*time.Second, cfg.API.WriteTimeout)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_SQLite(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "SQLite")
	t.Setenv("SQLITE_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceSQLite, cfg.Data.Source)
	assert.Equal(t, "data/heart-disease.db", cfg.Database.SQLitePath)
	assert.Equal(t, "heart_disease", cfg.Data.Table)
}

func TestLoad_UnknownSource(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATASET_SOURCE")
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("API_RATE_BURST", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.API.RateBurst)
}
