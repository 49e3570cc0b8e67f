package prediction

import (
	"errors"
	"math/rand"
	"testing"

	"cardiorisk/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_TieFavorsNoDisease(t *testing.T) {
	result, err := Aggregate(map[string]ModelPrediction{
		"A": {Label: LabelDisease, Probability: 0.9, Confidence: 0.9},
		"B": {Label: LabelNoDisease, Probability: 0.2, Confidence: 0.8},
	})
	require.NoError(t, err)

	assert.Equal(t, LabelNoDisease, result.Label)
	assert.False(t, result.HighRisk())
	assert.InDelta(t, 0.55, result.AverageProbability, 1e-9)
	assert.Equal(t, 1, result.PositiveCount)
	assert.Equal(t, 1, result.NegativeCount)
	assert.Equal(t, "1/2", result.Agreement())
	assert.InDelta(t, 0.5, result.AgreementRatio, 1e-9)
}

func TestAggregate_Majority(t *testing.T) {
	result, err := Aggregate(map[string]ModelPrediction{
		"Logistic Regression": {Label: LabelDisease, Probability: 0.8, Confidence: 0.8},
		"Random Forest":       {Label: LabelDisease, Probability: 0.7, Confidence: 0.7},
		"K-Nearest Neighbors": {Label: LabelNoDisease, Probability: 0.3, Confidence: 0.7},
	})
	require.NoError(t, err)

	assert.Equal(t, LabelDisease, result.Label)
	assert.InDelta(t, 0.6, result.AverageProbability, 1e-9)
	assert.Equal(t, "2/3", result.Agreement())
	assert.InDelta(t, 2.0/3.0, result.AgreementRatio, 1e-9)
}

func TestAggregate_UnanimousNegative(t *testing.T) {
	result, err := Aggregate(map[string]ModelPrediction{
		"a": {Label: LabelNoDisease, Probability: 0.1, Confidence: 0.9},
		"b": {Label: LabelNoDisease, Probability: 0.05, Confidence: 0.95},
		"c": {Label: LabelNoDisease, Probability: 0.2, Confidence: 0.8},
	})
	require.NoError(t, err)

	assert.Equal(t, LabelNoDisease, result.Label)
	assert.InDelta(t, 0.1167, result.AverageProbability, 1e-4)
	assert.Equal(t, "0/3", result.Agreement())
	assert.Zero(t, result.AgreementRatio)
}

func TestAggregate_SingleModel(t *testing.T) {
	result, err := Aggregate(map[string]ModelPrediction{
		"only": {Label: LabelDisease, Probability: 0.51, Confidence: 0.51},
	})
	require.NoError(t, err)
	assert.Equal(t, LabelDisease, result.Label)
	assert.Equal(t, "1/1", result.Agreement())
}

func TestAggregate_EmptyInput(t *testing.T) {
	for _, input := range []map[string]ModelPrediction{nil, {}} {
		_, err := Aggregate(input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrEmptyEnsemble))
	}
}

func TestAggregate_BoundsHoldForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(6)
		input := make(map[string]ModelPrediction, n)
		for j := 0; j < n; j++ {
			p := rng.Float64()
			label := LabelNoDisease
			if rng.Intn(2) == 1 {
				label = LabelDisease
			}
			input[string(rune('a'+j))] = ModelPrediction{Label: label, Probability: p, Confidence: max(p, 1-p)}
		}

		result, err := Aggregate(input)
		require.NoError(t, err)
		assert.Contains(t, []Label{LabelNoDisease, LabelDisease}, result.Label)
		assert.GreaterOrEqual(t, result.AverageProbability, 0.0)
		assert.LessOrEqual(t, result.AverageProbability, 1.0)
		assert.GreaterOrEqual(t, result.AgreementRatio, 0.0)
		assert.LessOrEqual(t, result.AgreementRatio, 1.0)
		assert.Equal(t, n, result.PositiveCount+result.NegativeCount)
		assert.Equal(t, result.PositiveCount > result.NegativeCount, result.HighRisk())
	}
}

func TestFromProba(t *testing.T) {
	p, err := FromProba(1, []float64{0.25, 0.75})
	require.NoError(t, err)
	assert.Equal(t, LabelDisease, p.Label)
	assert.Equal(t, 0.75, p.Probability)
	assert.Equal(t, 0.75, p.Confidence)

	p, err = FromProba(0, []float64{0.6, 0.4})
	require.NoError(t, err)
	assert.Equal(t, 0.4, p.Probability)
	assert.Equal(t, 0.6, p.Confidence)

	_, err = FromProba(1, []float64{0.2, 0.3, 0.5})
	assert.True(t, errors.Is(err, core.ErrInvalidProbaShape))

	_, err = FromProba(2, []float64{0.5, 0.5})
	assert.Error(t, err)

	_, err = FromProba(1, []float64{-0.5, 1.5})
	assert.Error(t, err)
}

func TestAssessment_Successful(t *testing.T) {
	pred := ModelPrediction{Label: LabelDisease, Probability: 0.7, Confidence: 0.7}
	a := Assessment{Outcomes: []ModelOutcome{
		{Name: "Logistic Regression", Prediction: &pred},
		{Name: "Random Forest", Error: "boom"},
	}}
	got := a.Successful()
	assert.Len(t, got, 1)
	assert.Contains(t, got, "Logistic Regression")
	assert.True(t, a.Outcomes[0].OK())
	assert.False(t, a.Outcomes[1].OK())
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "Heart Disease Detected", LabelDisease.String())
	assert.Equal(t, "No Heart Disease Detected", LabelNoDisease.String())
}
