package ports

import (
	"context"

	"cardiorisk/domain/core"
)

// Classifier is an opaque pre-trained binary model. Input vectors must follow
// clinical.FeatureOrder.
type Classifier interface {
	// Predict returns the class label, 0 or 1
	Predict(features []float64) (int, error)
	// PredictProba returns [P(no disease), P(disease)]
	PredictProba(features []float64) ([]float64, error)
}

// ModelInfo describes a loaded classifier
type ModelInfo struct {
	ID          core.ModelID `json:"id"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Description string       `json:"description,omitempty"`
	Checksum    core.Hash    `json:"checksum,omitempty"` // SHA-256 of the artifact bytes
}

// ModelStore loads classifiers from wherever the artifacts live
type ModelStore interface {
	Load(ctx context.Context, id core.ModelID) (Classifier, ModelInfo, error)
	List(ctx context.Context) ([]core.ModelID, error)
}
