package classifier

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Neighbor weighting schemes
const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

// KNNParams holds the stored training points, already in scaled space when a scaler is set
type KNNParams struct {
	K       int         `json:"k"`
	Weights string      `json:"weights"`
	Points  [][]float64 `json:"points"`
	Labels  []int       `json:"labels"`
}

// KNN votes among the k nearest stored points by Euclidean distance
type KNN struct {
	params KNNParams
	scaler *StandardScaler
	width  int
}

// NewKNN validates stored points and the neighbor count
func NewKNN(params KNNParams, scaler *StandardScaler, width int) (*KNN, error) {
	if params.Weights == "" {
		params.Weights = WeightsUniform
	}
	if params.Weights != WeightsUniform && params.Weights != WeightsDistance {
		return nil, fmt.Errorf("unknown knn weights %q", params.Weights)
	}
	if len(params.Points) == 0 || len(params.Points) != len(params.Labels) {
		return nil, fmt.Errorf("knn has %d points and %d labels", len(params.Points), len(params.Labels))
	}
	if params.K < 1 || params.K > len(params.Points) {
		return nil, fmt.Errorf("knn k=%d must be in [1,%d]", params.K, len(params.Points))
	}
	for i, p := range params.Points {
		if len(p) != width {
			return nil, fmt.Errorf("knn point %d has %d features, want %d", i, len(p), width)
		}
		if params.Labels[i] != 0 && params.Labels[i] != 1 {
			return nil, fmt.Errorf("knn label %d is %d, want 0 or 1", i, params.Labels[i])
		}
	}
	if scaler != nil {
		if err := scaler.validate(width); err != nil {
			return nil, err
		}
	}
	return &KNN{params: params, scaler: scaler, width: width}, nil
}

type neighbor struct {
	dist  float64
	label int
}

// PredictProba returns the (optionally distance-weighted) class share among the k nearest points
func (m *KNN) PredictProba(features []float64) ([]float64, error) {
	if err := checkWidth(features, m.width); err != nil {
		return nil, err
	}
	x := m.scaler.Transform(features)

	neighbors := make([]neighbor, len(m.params.Points))
	for i, p := range m.params.Points {
		neighbors[i] = neighbor{dist: floats.Distance(x, p, 2), label: m.params.Labels[i]}
	}
	sort.SliceStable(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })
	nearest := neighbors[:m.params.K]

	votes := make([]float64, 2)
	if m.params.Weights == WeightsDistance {
		// exact matches take all the weight, as infinite 1/d would
		exact := false
		for _, n := range nearest {
			if n.dist == 0 {
				votes[n.label]++
				exact = true
			}
		}
		if !exact {
			for _, n := range nearest {
				votes[n.label] += 1 / n.dist
			}
		}
	} else {
		for _, n := range nearest {
			votes[n.label]++
		}
	}
	floats.Scale(1/floats.Sum(votes), votes)
	return votes, nil
}

// Predict returns the majority class among the k nearest points, class 0 on ties
func (m *KNN) Predict(features []float64) (int, error) {
	proba, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}
