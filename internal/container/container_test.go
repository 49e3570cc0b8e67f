package container

import (
	"context"
	"path/filepath"
	"testing"

	"cardiorisk/adapters/excel"
	"cardiorisk/adapters/postgres"
	"cardiorisk/adapters/sqlite"
	"cardiorisk/internal/config"
	apperrors "cardiorisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(datasetFile, modelsDir string) *config.Config {
	cfg := &config.Config{}
	cfg.Data.Source = config.SourceFile
	cfg.Data.File = datasetFile
	cfg.Models.Dir = modelsDir
	cfg.Metrics.Enabled = true
	return cfg
}

func TestLoad_BundledData(t *testing.T) {
	root := filepath.Join("..", "..", "data")
	c, err := New(testConfig(filepath.Join(root, "heart-disease.csv"), filepath.Join(root, "models")))
	require.NoError(t, err)
	require.NoError(t, c.Load(context.Background()))
	defer c.Close()

	ds, err := c.Dataset()
	require.NoError(t, err)
	assert.Greater(t, ds.RecordCount(), 0)
	assert.Empty(t, c.Predictions.LoadErrors())
	for _, st := range c.Predictions.Statuses() {
		assert.True(t, st.Loaded, st.Spec.Name)
	}
}

func TestLoad_MissingFilesAreNotFatal(t *testing.T) {
	dir := t.TempDir()
	c, err := New(testConfig(filepath.Join(dir, "none.csv"), dir))
	require.NoError(t, err)
	require.NoError(t, c.Load(context.Background()))

	_, err = c.Dataset()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatasetUnavailable, apperrors.GetCode(err))
	assert.Len(t, c.Predictions.LoadErrors(), 3)
	assert.Nil(t, c.Analyzer)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestLoad_SQLiteSource(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join("..", "..", "data")
	path := filepath.Join(t.TempDir(), "heart.db")

	csv, err := excel.NewDataReader(filepath.Join(root, "heart-disease.csv")).Load(ctx)
	require.NoError(t, err)
	db, err := sqlite.Open(ctx, path, false)
	require.NoError(t, err)
	_, err = postgres.NewDatasetImporter(db, "heart_disease").Import(ctx, csv, false)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := testConfig("", filepath.Join(root, "models"))
	cfg.Data.Source = config.SourceSQLite
	cfg.Data.Table = "heart_disease"
	cfg.Database.SQLitePath = path
	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Load(ctx))
	defer c.Close()

	ds, err := c.Dataset()
	require.NoError(t, err)
	assert.Equal(t, csv.RecordCount(), ds.RecordCount())
	assert.Equal(t, "sqlite3:heart_disease", ds.Source)
}

func TestLoad_SQLiteMissingFileIsFatal(t *testing.T) {
	cfg := testConfig("", t.TempDir())
	cfg.Data.Source = config.SourceSQLite
	cfg.Data.Table = "heart_disease"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "none.db")
	c, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, c.Load(context.Background()))
}
