package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// ListLayers defines the interface for listing the stored layers of a dataset.
type ListLayers interface {
	Execute(ctx context.Context, datasetID uuid.UUID) ([]domain.LayerSummary, error)
}

// ListLayersImpl is the implementation of the ListLayers use case.
type ListLayersImpl struct {
	uow domain.UnitOfWork
}

// NewListLayersImpl creates a new instance of ListLayersImpl.
func NewListLayersImpl(uow domain.UnitOfWork) ListLayersImpl {
	return ListLayersImpl{uow: uow}
}

// Execute returns layer summaries without point payloads.
func (ll ListLayersImpl) Execute(ctx context.Context, datasetID uuid.UUID) ([]domain.LayerSummary, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	summaries, err := ll.uow.Layer().ListLayers(spanCtx, datasetID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return summaries, nil
}

// InitListLayers initializes the ListLayers use case and registers it in the
// dependency container.
type InitListLayers struct {
	Uow domain.UnitOfWork `resolve:""`
}

// Initialize registers the ListLayersImpl use case in the dependency container.
func (ill InitListLayers) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ListLayers](NewListLayersImpl(ill.Uow))
	return ctx, nil
}
