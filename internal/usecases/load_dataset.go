package usecases

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// LoadDataset defines the interface for importing a CSV table of
// conversation records as a new dataset.
type LoadDataset interface {
	Execute(ctx context.Context, name string, r io.Reader) (domain.Dataset, error)
}

// LoadDatasetImpl is the implementation of the LoadDataset use case.
type LoadDatasetImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
	createUUID   func() uuid.UUID
}

// NewLoadDatasetImpl creates a new instance of LoadDatasetImpl.
func NewLoadDatasetImpl(uow domain.UnitOfWork, timeProvider domain.CurrentTimeProvider) LoadDatasetImpl {
	return LoadDatasetImpl{
		uow:          uow,
		timeProvider: timeProvider,
		createUUID:   uuid.New,
	}
}

// Execute reads the CSV stream, the first record serving as the column
// header, and persists dataset metadata plus rows in one transaction. Cell
// values that parse as timestamps are normalized to RFC 3339; numeric and
// boolean cells keep their type; empty cells become null.
func (ld LoadDatasetImpl) Execute(ctx context.Context, name string, r io.Reader) (domain.Dataset, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		err = fmt.Errorf("failed to read csv header: %w", err)
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Dataset{}, err
	}

	dataset := domain.Dataset{
		ID:        ld.createUUID(),
		Name:      name,
		Columns:   header,
		CreatedAt: ld.timeProvider.Now(),
	}
	if err := dataset.Validate(); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Dataset{}, err
	}

	var rows []domain.DatasetRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			err = fmt.Errorf("failed to read csv record %d: %w", len(rows)+1, err)
			telemetry.RecordErrorAndStatus(span, err)
			return domain.Dataset{}, err
		}

		values := make(domain.Row, len(header))
		for i, column := range header {
			if i >= len(record) {
				values[column] = domain.NullValue()
				continue
			}
			values[column] = parseCell(record[i])
		}
		rows = append(rows, domain.DatasetRow{Index: len(rows), Values: values})
	}
	dataset.RowCount = len(rows)

	if err := ld.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		if err := uow.Dataset().CreateDataset(spanCtx, dataset); err != nil {
			return err
		}
		return uow.Dataset().InsertRows(spanCtx, dataset.ID, rows)
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Dataset{}, err
	}

	return dataset, nil
}

// parseCell maps one CSV cell to a tagged value. Timestamp detection runs
// only on cells that are not plain numbers, since dateparse accepts bare
// integers as unix epochs.
func parseCell(cell string) domain.Value {
	if cell == "" {
		return domain.NullValue()
	}
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return domain.NumberValue(n)
	}
	if b, err := strconv.ParseBool(cell); err == nil {
		return domain.BoolValue(b)
	}
	if t, err := dateparse.ParseIn(cell, time.UTC); err == nil {
		return domain.StringValue(t.UTC().Format(time.RFC3339))
	}
	return domain.StringValue(cell)
}

// InitLoadDataset initializes the LoadDataset use case and registers it in
// the dependency container.
type InitLoadDataset struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
}

// Initialize registers the LoadDatasetImpl use case in the dependency container.
func (ild InitLoadDataset) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[LoadDataset](NewLoadDatasetImpl(ild.Uow, ild.TimeService))
	return ctx, nil
}
