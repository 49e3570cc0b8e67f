package ports

import (
	"context"

	"cardiorisk/domain/dataset"
)

// DatasetRepository provides read-only access to the clinical dataset
type DatasetRepository interface {
	// Load returns the full dataset, validated against the 14-column schema
	Load(ctx context.Context) (*dataset.HeartDataset, error)
	// Describe names the source for display, e.g. a file path or table name
	Describe() string
}
