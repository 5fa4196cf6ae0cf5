package usecases

import (
	"context"
	"log"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// SearchLayer defines the interface for case-insensitive substring search
// over the stored texts of a layer.
type SearchLayer interface {
	Execute(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error)
}

// SearchLayerImpl is the implementation of the SearchLayer use case.
type SearchLayerImpl struct {
	uow    domain.UnitOfWork
	logger *log.Logger
}

// NewSearchLayerImpl creates a new instance of SearchLayerImpl.
func NewSearchLayerImpl(uow domain.UnitOfWork, logger *log.Logger) SearchLayerImpl {
	return SearchLayerImpl{
		uow:    uow,
		logger: logger,
	}
}

// Execute runs the substring match. Internal storage failures degrade to an
// empty result: search surfaces never break the caller.
func (sl SearchLayerImpl) Execute(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	hits, err := sl.uow.Point().SearchText(spanCtx, layerID, query, opts...)
	if err != nil {
		sl.logger.Printf("text search failed for layer %s: %v", layerID, err)
		telemetry.RecordErrorAndStatus(span, err)
		return []domain.SearchHit{}, nil
	}
	return hits, nil
}

// InitSearchLayer initializes the SearchLayer use case and registers it in
// the dependency container.
type InitSearchLayer struct {
	Uow    domain.UnitOfWork `resolve:""`
	Logger *log.Logger       `resolve:""`
}

// Initialize registers the SearchLayerImpl use case in the dependency container.
func (isl InitSearchLayer) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[SearchLayer](NewSearchLayerImpl(isl.Uow, isl.Logger))
	return ctx, nil
}
