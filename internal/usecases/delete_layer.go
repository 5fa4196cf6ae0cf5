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

// DeleteLayer defines the interface for removing a layer, its points and its
// stored coordinate blob.
type DeleteLayer interface {
	Execute(ctx context.Context, layerID uuid.UUID) error
}

// DeleteLayerImpl is the implementation of the DeleteLayer use case.
type DeleteLayerImpl struct {
	uow          domain.UnitOfWork
	coords       domain.CoordinateStore
	timeProvider domain.CurrentTimeProvider
	logger       *log.Logger
}

// NewDeleteLayerImpl creates a new instance of DeleteLayerImpl.
func NewDeleteLayerImpl(
	uow domain.UnitOfWork,
	coords domain.CoordinateStore,
	timeProvider domain.CurrentTimeProvider,
	logger *log.Logger,
) DeleteLayerImpl {
	return DeleteLayerImpl{
		uow:          uow,
		coords:       coords,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute removes the layer and everything hanging off it.
func (dl DeleteLayerImpl) Execute(ctx context.Context, layerID uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	layer, found, err := dl.uow.Layer().GetLayer(spanCtx, layerID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("layer %s not found", layerID))
		telemetry.RecordErrorAndStatus(span, err)
		return err
	}

	if err := dl.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		if err := uow.Point().DeletePointsByLayer(spanCtx, layerID); err != nil {
			return err
		}
		if err := uow.Layer().DeleteLayer(spanCtx, layerID); err != nil {
			return err
		}
		return uow.Outbox().RecordEvent(spanCtx, domain.LayerEvent{
			Type:      domain.EventType_LAYER_DELETED,
			LayerID:   layerID,
			DatasetID: layer.DatasetID,
			CreatedAt: dl.timeProvider.Now(),
		})
	}); telemetry.RecordErrorAndStatus(span, err) {
		return err
	}

	if err := dl.coords.DeleteCoordinates(spanCtx, layerID); err != nil {
		dl.logger.Printf("failed to delete coordinate blob for layer %s: %v", layerID, err)
	}
	return nil
}

// InitDeleteLayer initializes the DeleteLayer use case and registers it in
// the dependency container.
type InitDeleteLayer struct {
	Uow         domain.UnitOfWork          `resolve:""`
	Coords      domain.CoordinateStore     `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
	Logger      *log.Logger                `resolve:""`
}

// Initialize registers the DeleteLayerImpl use case in the dependency container.
func (idl InitDeleteLayer) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[DeleteLayer](NewDeleteLayerImpl(idl.Uow, idl.Coords, idl.TimeService, idl.Logger))
	return ctx, nil
}
