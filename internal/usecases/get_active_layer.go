package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// GetActiveLayer defines the interface for loading the active layer of a
// dataset with its full point set.
type GetActiveLayer interface {
	Execute(ctx context.Context, datasetID uuid.UUID) (domain.Layer, error)
}

// GetActiveLayerImpl is the implementation of the GetActiveLayer use case.
type GetActiveLayerImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
	logger       *log.Logger
}

// NewGetActiveLayerImpl creates a new instance of GetActiveLayerImpl.
func NewGetActiveLayerImpl(uow domain.UnitOfWork, timeProvider domain.CurrentTimeProvider, logger *log.Logger) GetActiveLayerImpl {
	return GetActiveLayerImpl{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute loads the active layer and its points, and bumps the layer's
// last-accessed timestamp.
func (gal GetActiveLayerImpl) Execute(ctx context.Context, datasetID uuid.UUID) (domain.Layer, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	layer, found, err := gal.uow.Layer().GetActiveLayer(spanCtx, datasetID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("dataset %s has no active layer", datasetID))
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Layer{}, err
	}

	layer.Points, err = gal.uow.Point().ListPoints(spanCtx, layer.ID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}

	if err := gal.uow.Layer().TouchLastAccessed(spanCtx, layer.ID, gal.timeProvider.Now()); err != nil {
		gal.logger.Printf("failed to touch layer %s: %v", layer.ID, err)
	}
	return layer, nil
}

// InitGetActiveLayer initializes the GetActiveLayer use case and registers it
// in the dependency container.
type InitGetActiveLayer struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
	Logger      *log.Logger                `resolve:""`
}

// Initialize registers the GetActiveLayerImpl use case in the dependency container.
func (igal InitGetActiveLayer) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[GetActiveLayer](NewGetActiveLayerImpl(igal.Uow, igal.TimeService, igal.Logger))
	return ctx, nil
}
