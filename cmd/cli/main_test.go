package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/prediction"
	"cardiorisk/internal/config"
	"cardiorisk/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundledContainer(t *testing.T) *container.Container {
	t.Helper()
	root := filepath.Join("..", "..", "data")
	cfg := &config.Config{}
	cfg.Data.Source = config.SourceFile
	cfg.Data.File = filepath.Join(root, "heart-disease.csv")
	cfg.Models.Dir = filepath.Join(root, "models")

	c, err := container.New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Load(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRunModels(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runModels(&out, bundledContainer(t)))
	assert.Contains(t, out.String(), "✅ Logistic Regression")
	assert.Contains(t, out.String(), "✅ K-Nearest Neighbors")
}

func TestRunPredict(t *testing.T) {
	c := bundledContainer(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runPredict(ctx, &out, c, clinical.DefaultRecord(), "all", false))
	assert.Contains(t, out.String(), "FINAL ASSESSMENT")
	assert.Contains(t, out.String(), "Models Detecting Risk: ")

	out.Reset()
	require.NoError(t, runPredict(ctx, &out, c, clinical.DefaultRecord(), "knn", false))
	assert.NotContains(t, out.String(), "FINAL ASSESSMENT")

	out.Reset()
	require.NoError(t, runPredict(ctx, &out, c, clinical.DefaultRecord(), "all", true))
	var a prediction.Assessment
	require.NoError(t, json.Unmarshal(out.Bytes(), &a))
	assert.Len(t, a.Outcomes, 3)
	require.NotNil(t, a.Ensemble)
	assert.Equal(t, 3, a.Ensemble.Total)

	assert.Error(t, runPredict(ctx, &out, c, clinical.DefaultRecord(), "svm", false))
}

func TestRunDescribe(t *testing.T) {
	c := bundledContainer(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runDescribe(ctx, &out, c, ""))
	assert.Contains(t, out.String(), "CORRELATION WITH TARGET")

	out.Reset()
	require.NoError(t, runDescribe(ctx, &out, c, clinical.Chol))
	assert.Contains(t, out.String(), "CHOL")
	assert.Contains(t, out.String(), "mean")

	assert.Error(t, runDescribe(ctx, &out, c, "shoe_size"))
}
