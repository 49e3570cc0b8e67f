package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticParams are fitted logistic regression weights
type LogisticParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// LogisticRegression is a binary logistic model over optionally scaled inputs
type LogisticRegression struct {
	params LogisticParams
	scaler *StandardScaler
}

// NewLogisticRegression validates params against the feature width
func NewLogisticRegression(params LogisticParams, scaler *StandardScaler, width int) (*LogisticRegression, error) {
	if len(params.Coef) != width {
		return nil, fmt.Errorf("logistic regression has %d coefficients, want %d", len(params.Coef), width)
	}
	if scaler != nil {
		if err := scaler.validate(width); err != nil {
			return nil, err
		}
	}
	return &LogisticRegression{params: params, scaler: scaler}, nil
}

func (m *LogisticRegression) decision(features []float64) (float64, error) {
	if err := checkWidth(features, len(m.params.Coef)); err != nil {
		return 0, err
	}
	x := m.scaler.Transform(features)
	return floats.Dot(m.params.Coef, x) + m.params.Intercept, nil
}

// PredictProba returns [1-p, p] with p = sigmoid(w·x + b)
func (m *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	z, err := m.decision(features)
	if err != nil {
		return nil, err
	}
	p := 1 / (1 + math.Exp(-z))
	return []float64{1 - p, p}, nil
}

// Predict returns 1 when the decision function is positive
func (m *LogisticRegression) Predict(features []float64) (int, error) {
	z, err := m.decision(features)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}
