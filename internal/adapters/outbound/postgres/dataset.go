package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

var (
	datasetFields = []string{
		"id",
		"name",
		"columns",
		"created_at",
	}
)

// rowInsertChunkSize bounds per-statement size for dataset row inserts.
const rowInsertChunkSize = 1000

// DatasetRepository implements domain.DatasetRepository using PostgreSQL.
type DatasetRepository struct {
	sb squirrel.StatementBuilderType
}

// NewDatasetRepository creates a new instance of DatasetRepository.
func NewDatasetRepository(br squirrel.BaseRunner) DatasetRepository {
	return DatasetRepository{
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(br),
	}
}

// CreateDataset persists dataset metadata.
func (dr DatasetRepository) CreateDataset(ctx context.Context, dataset domain.Dataset) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	columnsJSON, err := json.Marshal(dataset.Columns)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal dataset columns: %w", err)
	}

	_, err = dr.sb.
		Insert("datasets").
		Columns(datasetFields...).
		Values(
			dataset.ID,
			dataset.Name,
			columnsJSON,
			dataset.CreatedAt,
		).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// GetDataset retrieves a dataset by its ID.
func (dr DatasetRepository) GetDataset(ctx context.Context, id uuid.UUID) (domain.Dataset, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	var dataset domain.Dataset
	var columnsJSON []byte
	err := dr.sb.
		Select(datasetFields...).
		From("datasets").
		Where(squirrel.Eq{"id": id}).
		QueryRowContext(spanCtx).
		Scan(
			&dataset.ID,
			&dataset.Name,
			&columnsJSON,
			&dataset.CreatedAt,
		)

	if telemetry.RecordErrorAndStatus(span, err) {
		if err == sql.ErrNoRows {
			return domain.Dataset{}, false, nil
		}
		return domain.Dataset{}, false, err
	}

	if err := json.Unmarshal(columnsJSON, &dataset.Columns); err != nil {
		return domain.Dataset{}, false, fmt.Errorf("failed to unmarshal dataset columns: %w", err)
	}
	return dataset, true, nil
}

// ListDatasets lists all datasets with their row counts.
func (dr DatasetRepository) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	rows, err := dr.sb.
		Select(
			"d.id",
			"d.name",
			"d.columns",
			"d.created_at",
			"COUNT(r.row_index)",
		).
		From("datasets d").
		LeftJoin("dataset_rows r ON r.dataset_id = d.id").
		GroupBy("d.id", "d.name", "d.columns", "d.created_at").
		OrderBy("d.created_at DESC").
		QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var datasets []domain.Dataset
	for rows.Next() {
		var dataset domain.Dataset
		var columnsJSON []byte
		err := rows.Scan(
			&dataset.ID,
			&dataset.Name,
			&columnsJSON,
			&dataset.CreatedAt,
			&dataset.RowCount,
		)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		if err := json.Unmarshal(columnsJSON, &dataset.Columns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dataset columns: %w", err)
		}
		datasets = append(datasets, dataset)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return datasets, nil
}

// InsertRows bulk-inserts dataset rows in fixed-size chunks.
func (dr DatasetRepository) InsertRows(ctx context.Context, datasetID uuid.UUID, datasetRows []domain.DatasetRow) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	for start := 0; start < len(datasetRows); start += rowInsertChunkSize {
		end := start + rowInsertChunkSize
		if end > len(datasetRows) {
			end = len(datasetRows)
		}

		insert := dr.sb.
			Insert("dataset_rows").
			Columns("dataset_id", "row_index", "row_data")
		for _, row := range datasetRows[start:end] {
			rowJSON, err := json.Marshal(row.Values)
			if telemetry.RecordErrorAndStatus(span, err) {
				return fmt.Errorf("failed to marshal dataset row %d: %w", row.Index, err)
			}
			insert = insert.Values(datasetID, row.Index, rowJSON)
		}

		if _, err := insert.ExecContext(spanCtx); telemetry.RecordErrorAndStatus(span, err) {
			return err
		}
	}
	return nil
}

// ListRows returns every row of a dataset ordered by row index.
func (dr DatasetRepository) ListRows(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetRow, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	rows, err := dr.sb.
		Select("row_index", "row_data").
		From("dataset_rows").
		Where(squirrel.Eq{"dataset_id": datasetID}).
		OrderBy("row_index ASC").
		QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var result []domain.DatasetRow
	for rows.Next() {
		var row domain.DatasetRow
		var rowJSON []byte
		if err := rows.Scan(&row.Index, &rowJSON); telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		if err := json.Unmarshal(rowJSON, &row.Values); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dataset row %d: %w", row.Index, err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return result, nil
}

// DeleteDataset removes a dataset; its rows follow via cascade.
func (dr DatasetRepository) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := dr.sb.
		Delete("datasets").
		Where(squirrel.Eq{"id": id}).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// InitDatasetRepository is a Symbiont initializer for DatasetRepository.
type InitDatasetRepository struct {
	DB *sql.DB `resolve:""`
}

// Initialize registers the DatasetRepository in the dependency container.
func (i InitDatasetRepository) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.DatasetRepository](NewDatasetRepository(i.DB))
	return ctx, nil
}
