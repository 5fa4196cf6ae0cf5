package usecases

import (
	"context"
	"fmt"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// ActivateLayer defines the interface for switching the active layer of a
// dataset. Metadata-only: point payloads are untouched.
type ActivateLayer interface {
	Execute(ctx context.Context, layerID uuid.UUID) error
}

// ActivateLayerImpl is the implementation of the ActivateLayer use case.
type ActivateLayerImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
}

// NewActivateLayerImpl creates a new instance of ActivateLayerImpl.
func NewActivateLayerImpl(uow domain.UnitOfWork, timeProvider domain.CurrentTimeProvider) ActivateLayerImpl {
	return ActivateLayerImpl{
		uow:          uow,
		timeProvider: timeProvider,
	}
}

// Execute marks the layer active and every sibling of its dataset inactive.
// Concurrent activations serialize in the store; the last write wins.
func (al ActivateLayerImpl) Execute(ctx context.Context, layerID uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	layer, found, err := al.uow.Layer().GetLayer(spanCtx, layerID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("layer %s not found", layerID))
		telemetry.RecordErrorAndStatus(span, err)
		return err
	}

	if err := al.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		if err := uow.Layer().SetActiveLayer(spanCtx, layer.DatasetID, layerID); err != nil {
			return err
		}
		return uow.Outbox().RecordEvent(spanCtx, domain.LayerEvent{
			Type:      domain.EventType_LAYER_ACTIVATED,
			LayerID:   layerID,
			DatasetID: layer.DatasetID,
			CreatedAt: al.timeProvider.Now(),
		})
	}); telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// InitActivateLayer initializes the ActivateLayer use case and registers it
// in the dependency container.
type InitActivateLayer struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
}

// Initialize registers the ActivateLayerImpl use case in the dependency container.
func (ial InitActivateLayer) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ActivateLayer](NewActivateLayerImpl(ial.Uow, ial.TimeService))
	return ctx, nil
}
