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

// ReclusterLayer defines the interface for recomputing the cluster labels of
// a stored layer with new parameters, without re-embedding.
type ReclusterLayer interface {
	Execute(ctx context.Context, layerID uuid.UUID, cfg domain.ClusteringConfig) (domain.ClusterStats, error)
}

// ReclusterLayerImpl is the implementation of the ReclusterLayer use case.
type ReclusterLayerImpl struct {
	uow          domain.UnitOfWork
	coords       domain.CoordinateStore
	timeProvider domain.CurrentTimeProvider
	logger       *log.Logger
	defaults     PipelineDefaults
}

// NewReclusterLayerImpl creates a new instance of ReclusterLayerImpl.
func NewReclusterLayerImpl(
	uow domain.UnitOfWork,
	coords domain.CoordinateStore,
	timeProvider domain.CurrentTimeProvider,
	logger *log.Logger,
	defaults PipelineDefaults,
) ReclusterLayerImpl {
	return ReclusterLayerImpl{
		uow:          uow,
		coords:       coords,
		timeProvider: timeProvider,
		logger:       logger,
		defaults:     defaults,
	}
}

// Execute relabels every point of the layer and replaces the stored
// clustering configuration and statistics. Embeddings, texts and rendered
// positions are untouched.
func (rl ReclusterLayerImpl) Execute(ctx context.Context, layerID uuid.UUID, cfg domain.ClusteringConfig) (domain.ClusterStats, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	layer, found, err := rl.uow.Layer().GetLayer(spanCtx, layerID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.ClusterStats{}, err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("layer %s not found", layerID))
		telemetry.RecordErrorAndStatus(span, err)
		return domain.ClusterStats{}, err
	}

	coords, err := rl.clusteringCoordinates(spanCtx, layerID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.ClusterStats{}, err
	}

	if cfg.MinClusterSize == 0 {
		cfg.MinClusterSize = rl.defaults.Clustering.MinClusterSize
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = rl.defaults.Clustering.MinSamples
	}
	cfg = cfg.WithDefaults()

	labels, stats := domain.NewDensityClusterer(cfg).Cluster(coords)

	if err := rl.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		if err := uow.Point().UpdateClusterIDs(spanCtx, layerID, labels); err != nil {
			return err
		}
		if err := uow.Layer().UpdateClustering(spanCtx, layerID, cfg, stats); err != nil {
			return err
		}
		return uow.Outbox().RecordEvent(spanCtx, domain.LayerEvent{
			Type:      domain.EventType_LAYER_RECLUSTERED,
			LayerID:   layerID,
			DatasetID: layer.DatasetID,
			CreatedAt: rl.timeProvider.Now(),
		})
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.ClusterStats{}, err
	}

	return stats, nil
}

// clusteringCoordinates loads the stored intermediate coordinates for the
// layer, degrading to the rendered 2-D positions when no blob survives.
func (rl ReclusterLayerImpl) clusteringCoordinates(ctx context.Context, layerID uuid.UUID) ([][]float64, error) {
	coords, found, err := rl.coords.LoadCoordinates(ctx, layerID)
	if err != nil {
		return nil, err
	}
	if found {
		return coords, nil
	}

	rl.logger.Printf("no stored clustering coordinates for layer %s, degrading to 2-D positions", layerID)
	points, err := rl.uow.Point().ListPoints(ctx, layerID)
	if err != nil {
		return nil, err
	}
	coords = make([][]float64, len(points))
	for i, point := range points {
		coords[i] = []float64{point.X, point.Y}
	}
	return coords, nil
}

// InitReclusterLayer initializes the ReclusterLayer use case and registers it
// in the dependency container.
type InitReclusterLayer struct {
	Uow         domain.UnitOfWork          `resolve:""`
	Coords      domain.CoordinateStore     `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
	Logger      *log.Logger                `resolve:""`
	Defaults    PipelineDefaults           `resolve:""`
}

// Initialize registers the ReclusterLayerImpl use case in the dependency container.
func (irl InitReclusterLayer) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ReclusterLayer](NewReclusterLayerImpl(
		irl.Uow, irl.Coords, irl.TimeService, irl.Logger, irl.Defaults,
	))
	return ctx, nil
}
