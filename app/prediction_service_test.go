package app

import (
	"context"
	"errors"
	"testing"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/domain/prediction"
	apperrors "cardiorisk/internal/errors"
	"cardiorisk/internal/metrics"
	"cardiorisk/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Predict(features []float64) (int, error) {
	args := m.Called(features)
	return args.Int(0), args.Error(1)
}

func (m *mockClassifier) PredictProba(features []float64) ([]float64, error) {
	args := m.Called(features)
	proba, _ := args.Get(0).([]float64)
	return proba, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context, id core.ModelID) (ports.Classifier, ports.ModelInfo, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(ports.Classifier)
	return c, args.Get(1).(ports.ModelInfo), args.Error(2)
}

func (m *mockStore) List(ctx context.Context) ([]core.ModelID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]core.ModelID), args.Error(1)
}

func fixed(label int, p1 float64) *mockClassifier {
	c := &mockClassifier{}
	c.On("Predict", mock.Anything).Return(label, nil)
	c.On("PredictProba", mock.Anything).Return([]float64{1 - p1, p1}, nil)
	return c
}

func newService(t *testing.T, classifiers map[core.ModelID]ports.Classifier) *PredictionService {
	t.Helper()
	svc := NewPredictionService(DefaultModels, metrics.New())
	for id, c := range classifiers {
		svc.Register(id, c, ports.ModelInfo{Name: string(id)})
	}
	return svc
}

func TestAssess_AllModelsWithEnsemble(t *testing.T) {
	svc := newService(t, map[core.ModelID]ports.Classifier{
		"logistic_regression": fixed(1, 0.8),
		"random_forest":       fixed(1, 0.7),
		"knn":                 fixed(0, 0.3),
	})

	a, err := svc.Assess(context.Background(), clinical.DefaultRecord(), nil)
	require.NoError(t, err)
	require.Len(t, a.Outcomes, 3)

	names := []string{a.Outcomes[0].Name, a.Outcomes[1].Name, a.Outcomes[2].Name}
	assert.Equal(t, []string{"Logistic Regression", "Random Forest", "K-Nearest Neighbors"}, names)
	assert.InDelta(t, 0.7, a.Outcomes[2].Prediction.Confidence, 1e-12)

	require.NotNil(t, a.Ensemble)
	assert.Equal(t, prediction.LabelDisease, a.Ensemble.Label)
	assert.InDelta(t, 0.6, a.Ensemble.AverageProbability, 1e-9)
	assert.Equal(t, "2/3", a.Ensemble.Agreement())
	assert.NotEmpty(t, a.ID.String())
}

func TestAssess_PassesCanonicalVector(t *testing.T) {
	c := &mockClassifier{}
	record := clinical.Record{Age: 63, Sex: 1, CP: 3, TrestBPS: 145, Chol: 233, FBS: 1, Thalach: 150, Oldpeak: 2.3, Thal: 1}
	want := []float64{63, 1, 3, 145, 233, 1, 0, 150, 0, 2.3, 0, 0, 1}
	c.On("Predict", want).Return(1, nil).Once()
	c.On("PredictProba", want).Return([]float64{0.4, 0.6}, nil).Once()

	svc := newService(t, map[core.ModelID]ports.Classifier{"knn": c})
	a, err := svc.Assess(context.Background(), record, []core.ModelID{"knn"})
	require.NoError(t, err)
	c.AssertExpectations(t)

	require.Len(t, a.Outcomes, 1)
	assert.True(t, a.Outcomes[0].OK())
	// a single model never produces a final assessment
	assert.Nil(t, a.Ensemble)
}

func TestAssess_IsolatesModelFailures(t *testing.T) {
	broken := &mockClassifier{}
	broken.On("Predict", mock.Anything).Return(0, errors.New("corrupt tree"))

	malformed := &mockClassifier{}
	malformed.On("Predict", mock.Anything).Return(1, nil)
	malformed.On("PredictProba", mock.Anything).Return([]float64{0.1, 0.2, 0.7}, nil)

	svc := newService(t, map[core.ModelID]ports.Classifier{
		"logistic_regression": fixed(0, 0.2),
		"random_forest":       broken,
		"knn":                 malformed,
	})

	a, err := svc.Assess(context.Background(), clinical.DefaultRecord(), nil)
	require.NoError(t, err)
	require.Len(t, a.Outcomes, 3)
	assert.True(t, a.Outcomes[0].OK())
	assert.Contains(t, a.Outcomes[1].Error, "corrupt tree")
	assert.Contains(t, a.Outcomes[2].Error, "K-Nearest Neighbors")
	// only one success, so no ensemble
	assert.Nil(t, a.Ensemble)
}

func TestAssess_TwoSuccessesTieFavorsNoDisease(t *testing.T) {
	svc := newService(t, map[core.ModelID]ports.Classifier{
		"logistic_regression": fixed(1, 0.9),
		"random_forest":       fixed(0, 0.2),
	})

	a, err := svc.Assess(context.Background(), clinical.DefaultRecord(), nil)
	require.NoError(t, err)
	// knn was never loaded
	assert.False(t, a.Outcomes[2].OK())
	require.NotNil(t, a.Ensemble)
	assert.Equal(t, prediction.LabelNoDisease, a.Ensemble.Label)
	assert.InDelta(t, 0.55, a.Ensemble.AverageProbability, 1e-9)
}

func TestAssess_RepeatedSelectionRunsEachModelOnce(t *testing.T) {
	lr := fixed(1, 0.8)
	svc := newService(t, map[core.ModelID]ports.Classifier{
		"logistic_regression": lr,
		"random_forest":       fixed(0, 0.3),
	})

	a, err := svc.Assess(context.Background(), clinical.DefaultRecord(),
		[]core.ModelID{"logistic_regression", "random_forest", "logistic_regression"})
	require.NoError(t, err)
	require.Len(t, a.Outcomes, 2)
	assert.Equal(t, core.ModelID("logistic_regression"), a.Outcomes[0].Model)
	assert.Equal(t, core.ModelID("random_forest"), a.Outcomes[1].Model)
	lr.AssertNumberOfCalls(t, "Predict", 1)

	require.NotNil(t, a.Ensemble)
	assert.Equal(t, 2, a.Ensemble.Total)
	assert.Equal(t, 1, a.Ensemble.PositiveCount)
}

func TestAssess_RejectsInvalidRecordAndUnknownModel(t *testing.T) {
	svc := newService(t, nil)

	bad := clinical.DefaultRecord()
	bad.Age = 5
	_, err := svc.Assess(context.Background(), bad, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrInvalidRecord))

	_, err = svc.Assess(context.Background(), clinical.DefaultRecord(), []core.ModelID{"svm"})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestAssess_CancelledContext(t *testing.T) {
	svc := newService(t, map[core.ModelID]ports.Classifier{"knn": fixed(1, 0.9)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Assess(ctx, clinical.DefaultRecord(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadModels_RecordsFailures(t *testing.T) {
	store := &mockStore{}
	store.On("Load", mock.Anything, core.ModelID("logistic_regression")).
		Return(fixed(1, 0.7), ports.ModelInfo{Name: "Logistic Regression", Kind: "logistic_regression"}, nil)
	store.On("Load", mock.Anything, core.ModelID("random_forest")).
		Return(nil, ports.ModelInfo{}, core.ErrModelNotFound)
	store.On("Load", mock.Anything, core.ModelID("knn")).
		Return(fixed(0, 0.1), ports.ModelInfo{Name: "K-Nearest Neighbors"}, nil)

	svc := NewPredictionService(DefaultModels, nil)
	assert.Equal(t, 2, svc.LoadModels(context.Background(), store))
	store.AssertExpectations(t)

	statuses := svc.Statuses()
	assert.True(t, statuses[0].Loaded)
	assert.Equal(t, core.ModelID("logistic_regression"), statuses[0].Info.ID)
	assert.False(t, statuses[1].Loaded)
	assert.Contains(t, statuses[1].Error, "Random Forest")
	assert.Len(t, svc.LoadErrors(), 1)

	_, err := svc.Predict(context.Background(), "random_forest", clinical.DefaultRecord())
	assert.Equal(t, apperrors.CodeModelUnavailable, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrModelNotFound))

	_, err = svc.Predict(context.Background(), "svm", clinical.DefaultRecord())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestParseSelection(t *testing.T) {
	svc := newService(t, nil)

	ids, err := svc.ParseSelection(SelectAll)
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = svc.ParseSelection("knn")
	require.NoError(t, err)
	assert.Equal(t, []core.ModelID{"knn"}, ids)

	_, err = svc.ParseSelection("svm")
	assert.Error(t, err)
}
