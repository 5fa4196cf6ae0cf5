package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
)

// ListDatasets defines the interface for listing imported datasets.
type ListDatasets interface {
	Execute(ctx context.Context) ([]domain.Dataset, error)
}

// ListDatasetsImpl is the implementation of the ListDatasets use case.
type ListDatasetsImpl struct {
	uow domain.UnitOfWork
}

// NewListDatasetsImpl creates a new instance of ListDatasetsImpl.
func NewListDatasetsImpl(uow domain.UnitOfWork) ListDatasetsImpl {
	return ListDatasetsImpl{uow: uow}
}

// Execute lists all datasets with their row counts.
func (ld ListDatasetsImpl) Execute(ctx context.Context) ([]domain.Dataset, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	datasets, err := ld.uow.Dataset().ListDatasets(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return datasets, nil
}

// InitListDatasets initializes the ListDatasets use case and registers it in
// the dependency container.
type InitListDatasets struct {
	Uow domain.UnitOfWork `resolve:""`
}

// Initialize registers the ListDatasetsImpl use case in the dependency container.
func (ild InitListDatasets) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ListDatasets](NewListDatasetsImpl(ild.Uow))
	return ctx, nil
}
