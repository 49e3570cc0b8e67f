package prediction

import (
	"fmt"
	"math"
	"time"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
)

// Label is a binary diagnosis
type Label int

const (
	LabelNoDisease Label = 0
	LabelDisease   Label = 1
)

// String returns the headline used on result cards
func (l Label) String() string {
	if l == LabelDisease {
		return "Heart Disease Detected"
	}
	return "No Heart Disease Detected"
}

// Positive reports whether the label signals disease
func (l Label) Positive() bool { return l == LabelDisease }

// ModelPrediction is one classifier's output for one record
type ModelPrediction struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"probability"` // P(disease)
	Confidence  float64 `json:"confidence"`  // max class probability
}

// FromProba derives a prediction from a classifier's label and [p0, p1] output
func FromProba(label int, proba []float64) (ModelPrediction, error) {
	if len(proba) != 2 {
		return ModelPrediction{}, fmt.Errorf("%w: got %d classes, want 2", core.ErrInvalidProbaShape, len(proba))
	}
	p := ModelPrediction{
		Label:       Label(label),
		Probability: proba[1],
		Confidence:  math.Max(proba[0], proba[1]),
	}
	if err := p.Validate(); err != nil {
		return ModelPrediction{}, err
	}
	return p, nil
}

// Validate enforces label and probability bounds
func (p ModelPrediction) Validate() error {
	if p.Label != LabelNoDisease && p.Label != LabelDisease {
		return fmt.Errorf("%w: label %d is not binary", core.ErrInvalidProbaShape, p.Label)
	}
	if !unit(p.Probability) {
		return fmt.Errorf("%w: probability %v outside [0,1]", core.ErrInvalidProbaShape, p.Probability)
	}
	if !unit(p.Confidence) || p.Confidence < 0.5 {
		return fmt.Errorf("%w: confidence %v outside [0.5,1]", core.ErrInvalidProbaShape, p.Confidence)
	}
	return nil
}

func unit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// EnsembleResult aggregates several model predictions for the same record
type EnsembleResult struct {
	Label              Label   `json:"label"`
	AverageProbability float64 `json:"average_probability"`
	PositiveCount      int     `json:"positive_count"`
	NegativeCount      int     `json:"negative_count"`
	Total              int     `json:"total"`
	AgreementRatio     float64 `json:"agreement_ratio"`
}

// Agreement renders the positive vote count as "k/n"
func (e EnsembleResult) Agreement() string {
	return fmt.Sprintf("%d/%d", e.PositiveCount, e.Total)
}

// HighRisk reports whether the majority vote is disease
func (e EnsembleResult) HighRisk() bool { return e.Label.Positive() }

// ModelOutcome is either a prediction or the error that prevented it
type ModelOutcome struct {
	Model      core.ModelID     `json:"model"`
	Name       string           `json:"name"`
	Prediction *ModelPrediction `json:"prediction,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// OK reports whether the model produced a prediction
func (o ModelOutcome) OK() bool { return o.Prediction != nil }

// Assessment is the request-scoped result of running one or more models on a record
type Assessment struct {
	ID        core.AssessmentID `json:"id"`
	Record    clinical.Record   `json:"record"`
	Outcomes  []ModelOutcome    `json:"outcomes"`
	Ensemble  *EnsembleResult   `json:"ensemble,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Successful returns the predictions that completed, keyed by model name
func (a *Assessment) Successful() map[string]ModelPrediction {
	out := make(map[string]ModelPrediction, len(a.Outcomes))
	for _, o := range a.Outcomes {
		if o.Prediction != nil {
			out[o.Name] = *o.Prediction
		}
	}
	return out
}
