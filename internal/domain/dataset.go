package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Dataset is one imported table of conversation records.
type Dataset struct {
	ID        uuid.UUID
	Name      string
	Columns   []string
	RowCount  int
	CreatedAt time.Time
}

// Validate checks the dataset metadata before persisting.
func (d Dataset) Validate() error {
	if d.Name == "" {
		return NewValidationErr("dataset name cannot be empty")
	}
	if len(d.Columns) == 0 {
		return NewValidationErr("dataset must declare at least one column")
	}
	return nil
}

// DatasetRow is one record of a dataset with its stable row index.
type DatasetRow struct {
	Index  int
	Values Row
}

// DatasetRepository manages datasets and their rows.
type DatasetRepository interface {
	// CreateDataset persists dataset metadata.
	CreateDataset(ctx context.Context, dataset Dataset) error
	// GetDataset retrieves a dataset by id.
	GetDataset(ctx context.Context, id uuid.UUID) (Dataset, bool, error)
	// ListDatasets lists all datasets.
	ListDatasets(ctx context.Context) ([]Dataset, error)
	// InsertRows bulk-inserts dataset rows.
	InsertRows(ctx context.Context, datasetID uuid.UUID, rows []DatasetRow) error
	// ListRows returns every row of a dataset ordered by row index.
	ListRows(ctx context.Context, datasetID uuid.UUID) ([]DatasetRow, error)
	// DeleteDataset removes a dataset and its rows.
	DeleteDataset(ctx context.Context, id uuid.UUID) error
}
