package classifier

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 63-year-old male, asymptomatic chest pain, the first row of the classic dataset
func sampleVector() []float64 {
	return clinical.Record{
		Age: 63, Sex: 1, CP: 3, TrestBPS: 145, Chol: 233, FBS: 1, RestECG: 0,
		Thalach: 150, Exang: 0, Oldpeak: 2.3, Slope: 0, CA: 0, Thal: 1,
	}.Vector()
}

func loadFixture(t *testing.T, id core.ModelID) ports.Classifier {
	t.Helper()
	model, info, err := NewFileModelStore("testdata").Load(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, info.Name)
	return model
}

func swap(v []float64, i, j int) []float64 {
	out := append([]float64(nil), v...)
	out[i], out[j] = out[j], out[i]
	return out
}

func TestLogisticRegression_Fixture(t *testing.T) {
	model := loadFixture(t, "logistic_regression")

	proba, err := model.PredictProba(sampleVector())
	require.NoError(t, err)
	require.Len(t, proba, 2)
	// z = -0.353 for the sample record
	assert.InDelta(t, 1/(1+math.Exp(0.353)), proba[1], 1e-9)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)

	label, err := model.Predict(sampleVector())
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

// Swapping two positions of the vector must change the prediction; a silent
// reordering would otherwise go unnoticed.
func TestFeatureOrderMatters(t *testing.T) {
	model := loadFixture(t, "logistic_regression")
	ageIdx, bpsIdx := 0, 3
	require.Equal(t, clinical.Age, clinical.FeatureOrder[ageIdx])
	require.Equal(t, clinical.TrestBPS, clinical.FeatureOrder[bpsIdx])

	original := sampleVector()
	reordered := swap(original, ageIdx, bpsIdx)

	pOrig, err := model.PredictProba(original)
	require.NoError(t, err)
	pSwapped, err := model.PredictProba(reordered)
	require.NoError(t, err)
	assert.NotEqual(t, pOrig[1], pSwapped[1])

	lOrig, err := model.Predict(original)
	require.NoError(t, err)
	lSwapped, err := model.Predict(reordered)
	require.NoError(t, err)
	assert.Equal(t, 0, lOrig)
	assert.Equal(t, 1, lSwapped)
}

func TestRandomForest_Fixture(t *testing.T) {
	model := loadFixture(t, "random_forest")

	proba, err := model.PredictProba(sampleVector())
	require.NoError(t, err)
	// tree 1 leaf [5,45], tree 2 leaf [20,10]
	assert.InDelta(t, (0.9+1.0/3.0)/2, proba[1], 1e-9)
	label, err := model.Predict(sampleVector())
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	defaults := clinical.DefaultRecord().Vector()
	proba, err = model.PredictProba(defaults)
	require.NoError(t, err)
	assert.InDelta(t, 0.1875, proba[1], 1e-9)
	label, err = model.Predict(defaults)
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestKNN_Fixture(t *testing.T) {
	model := loadFixture(t, "knn")

	proba, err := model.PredictProba(sampleVector())
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, proba[1], 1e-9)
	label, err := model.Predict(sampleVector())
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	proba, err = model.PredictProba(clinical.DefaultRecord().Vector())
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, proba[1], 1e-9)
}

func TestKNN_DistanceWeights(t *testing.T) {
	params := KNNParams{
		K:       2,
		Weights: WeightsDistance,
		Points:  [][]float64{{0, 0}, {3, 0}},
		Labels:  []int{0, 1},
	}
	model, err := NewKNN(params, nil, 2)
	require.NoError(t, err)

	// distances 1 and 2, weights 1 and 0.5
	proba, err := model.PredictProba([]float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, proba[1], 1e-9)

	// an exact match takes all the weight
	proba, err = model.PredictProba([]float64{3, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, proba)
}

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{Mean: []float64{10, 0}, Scale: []float64{2, 4}}
	require.NoError(t, s.validate(2))
	in := []float64{14, 2}
	assert.Equal(t, []float64{2, 0.5}, s.Transform(in))
	assert.Equal(t, []float64{14, 2}, in, "input must not be modified")

	var none *StandardScaler
	assert.Equal(t, in, none.Transform(in))

	assert.Error(t, (&StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 0}}).validate(2))
}

func TestLogisticRegression_WithScaler(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{1, 1}, Scale: []float64{1, 1}}
	model, err := NewLogisticRegression(LogisticParams{Coef: []float64{1, 1}}, scaler, 2)
	require.NoError(t, err)

	proba, err := model.PredictProba([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, proba[1], 1e-12)

	// z == 0 is not positive
	label, err := model.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestWrongVectorLength(t *testing.T) {
	for _, id := range []core.ModelID{"logistic_regression", "random_forest", "knn"} {
		model := loadFixture(t, id)
		_, err := model.PredictProba([]float64{1, 2, 3})
		assert.True(t, errors.Is(err, core.ErrVectorLength), id)
		_, err = model.Predict(nil)
		assert.True(t, errors.Is(err, core.ErrVectorLength), id)
	}
}

func TestBuild_RejectsBadArtifacts(t *testing.T) {
	names := make([]string, clinical.NumFeatures)
	for i, k := range clinical.FeatureOrder {
		names[i] = string(k)
	}
	swapped := append([]string(nil), names...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	tests := []struct {
		name     string
		artifact Artifact
	}{
		{"reordered features", Artifact{Kind: KindLogisticRegression, FeatureNames: swapped,
			Logistic: &LogisticParams{Coef: make([]float64, clinical.NumFeatures)}}},
		{"missing params", Artifact{Kind: KindRandomForest, FeatureNames: names}},
		{"short coefficients", Artifact{Kind: KindLogisticRegression, FeatureNames: names,
			Logistic: &LogisticParams{Coef: []float64{1}}}},
		{"empty forest", Artifact{Kind: KindRandomForest, FeatureNames: names, Forest: &ForestParams{}}},
		{"backward child", Artifact{Kind: KindRandomForest, FeatureNames: names, Forest: &ForestParams{Trees: []Tree{{Nodes: []TreeNode{
			{Feature: 0, Threshold: 1, Left: 0, Right: 1},
			{Left: -1, Right: -1, Value: []float64{1, 1}},
		}}}}}},
		{"k too large", Artifact{Kind: KindKNN, FeatureNames: names, KNN: &KNNParams{K: 2,
			Points: [][]float64{make([]float64, clinical.NumFeatures)}, Labels: []int{1}}}},
		{"unknown kind", Artifact{Kind: "svm", FeatureNames: names}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Build("m", tt.artifact)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidArtifact))
		})
	}
}

func TestDecode_RejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		reason string
	}{
		{"not json", `{"kind": "knn"`, "not valid JSON"},
		{"no kind", `{"name": "x", "feature_names": []}`, "kind missing"},
		{"params not an object", `{"kind": "random_forest", "forest": [1, 2]}`, "forest parameters missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode("m", []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidArtifact)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestFileModelStore(t *testing.T) {
	store := NewFileModelStore("testdata")
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.ModelID{"broken", "knn", "logistic_regression", "random_forest"}, ids)

	_, _, err = store.Load(ctx, "missing")
	assert.True(t, errors.Is(err, core.ErrModelNotFound))

	_, _, err = store.Load(ctx, "broken")
	assert.True(t, errors.Is(err, core.ErrInvalidArtifact))

	_, info, err := store.Load(ctx, "knn")
	require.NoError(t, err)
	assert.Equal(t, "K-Nearest Neighbors", info.Name)
	assert.Equal(t, KindKNN, info.Kind)
	raw, err := os.ReadFile(filepath.Join("testdata", "knn.json"))
	require.NoError(t, err)
	assert.Equal(t, core.NewHash(raw), info.Checksum)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = store.Load(cancelled, "knn")
	assert.ErrorIs(t, err, context.Canceled)
}
