package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/common"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/projection"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// GenerateLayerParams holds the inputs of one full pipeline run.
type GenerateLayerParams struct {
	DatasetID   uuid.UUID
	Name        string
	Provider    string
	Model       string
	Composition domain.CompositionConfig
	Clustering  domain.ClusteringConfig
}

// GenerateLayer defines the interface for the full layer pipeline: compose,
// embed, reduce, cluster, persist.
type GenerateLayer interface {
	Execute(ctx context.Context, params GenerateLayerParams, observer domain.ProgressObserver) (domain.Layer, error)
}

// GenerateLayerImpl is the implementation of the GenerateLayer use case.
type GenerateLayerImpl struct {
	uow          domain.UnitOfWork
	embedder     domain.BatchEmbedder
	reducer      *projection.TwoStageReducer
	coords       domain.CoordinateStore
	timeProvider domain.CurrentTimeProvider
	logger       *log.Logger
	defaults     PipelineDefaults
	createUUID   func() uuid.UUID
}

// NewGenerateLayerImpl creates a new instance of GenerateLayerImpl.
func NewGenerateLayerImpl(
	uow domain.UnitOfWork,
	embedder domain.BatchEmbedder,
	reducer *projection.TwoStageReducer,
	coords domain.CoordinateStore,
	timeProvider domain.CurrentTimeProvider,
	logger *log.Logger,
	defaults PipelineDefaults,
) GenerateLayerImpl {
	return GenerateLayerImpl{
		uow:          uow,
		embedder:     embedder,
		reducer:      reducer,
		coords:       coords,
		timeProvider: timeProvider,
		logger:       logger,
		defaults:     defaults,
		createUUID:   uuid.New,
	}
}

// Execute runs the full pipeline and persists the resulting layer as the
// active one of its dataset. Any stage failure aborts the run; nothing is
// persisted unless the whole save transaction commits.
func (gl GenerateLayerImpl) Execute(ctx context.Context, params GenerateLayerParams, observer domain.ProgressObserver) (domain.Layer, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	now := gl.timeProvider.Now()
	layer := domain.Layer{
		ID:             gl.createUUID(),
		DatasetID:      params.DatasetID,
		Name:           params.Name,
		Provider:       params.Provider,
		Model:          params.Model,
		Composition:    params.Composition,
		Clustering:     gl.clusteringConfig(params.Clustering),
		Active:         true,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := layer.Validate(); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}
	if layer.Provider == "" || layer.Model == "" {
		err := domain.NewValidationErr("layer requires an embedding provider and model")
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Layer{}, err
	}

	_, found, err := gl.uow.Dataset().GetDataset(spanCtx, params.DatasetID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("dataset %s not found", params.DatasetID))
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Layer{}, err
	}

	datasetRows, err := gl.uow.Dataset().ListRows(spanCtx, params.DatasetID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}

	rows := make([]domain.Row, len(datasetRows))
	for i, dr := range datasetRows {
		rows[i] = dr.Values
	}

	units, err := domain.ComposeUnits(rows, params.Composition)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}
	if len(units) == 0 {
		err := domain.NewValidationErr("composition produced no text units")
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Layer{}, err
	}

	texts := make([]string, len(units))
	for i, unit := range units {
		texts[i] = unit.Text
	}

	embedded, err := gl.embedder.EmbedTexts(spanCtx, params.Provider, params.Model, texts, observer)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}
	RecordEmbeddingTokens(spanCtx, params.Model, embedded.TotalTokens)
	layer.Dimension = embedded.Dimension

	clusterCoords, err := gl.reducer.ReduceForClustering(spanCtx, embedded.Embeddings)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}

	clusterer := domain.NewDensityClusterer(layer.Clustering)
	labels, stats := clusterer.Cluster(clusterCoords)
	layer.Stats = stats

	vizCoords, err := gl.reducer.ReduceForVisualization(spanCtx, embedded.Embeddings)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}

	layer.Points = gl.buildPoints(layer.ID, units, datasetRows, embedded.Embeddings, vizCoords, labels)

	if err := gl.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		if err := uow.Layer().UpsertLayer(spanCtx, layer); err != nil {
			return err
		}
		if err := uow.Point().DeletePointsByLayer(spanCtx, layer.ID); err != nil {
			return err
		}
		if err := uow.Point().InsertPoints(spanCtx, layer.Points); err != nil {
			return err
		}
		if err := uow.Layer().SetActiveLayer(spanCtx, layer.DatasetID, layer.ID); err != nil {
			return err
		}
		return uow.Outbox().RecordEvent(spanCtx, domain.LayerEvent{
			Type:      domain.EventType_LAYER_CREATED,
			LayerID:   layer.ID,
			DatasetID: layer.DatasetID,
			CreatedAt: now,
		})
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Layer{}, err
	}

	// The blob only serves future re-clustering; a failed write degrades
	// that path rather than failing the run.
	if err := gl.coords.SaveCoordinates(spanCtx, layer.ID, clusterCoords); err != nil {
		gl.logger.Printf("failed to store clustering coordinates for layer %s: %v", layer.ID, err)
	}

	RecordLayerGenerated(spanCtx, len(layer.Points))
	return layer, nil
}

// buildPoints assembles the persisted point set from the stage outputs, all
// indexed by unit order.
func (gl GenerateLayerImpl) buildPoints(
	layerID uuid.UUID,
	units []domain.CompositionUnit,
	datasetRows []domain.DatasetRow,
	embeddings [][]float64,
	vizCoords [][]float64,
	labels []int,
) []domain.Point {
	pointIDs := make([]uuid.UUID, len(units))
	for i := range units {
		pointIDs[i] = gl.createUUID()
	}

	var neighborLists [][]common.Neighbor
	if len(units) <= gl.defaults.Neighbors.PrecomputeThreshold {
		neighborLists = common.NearestNeighbors(embeddings, gl.defaults.Neighbors.Count)
	}

	points := make([]domain.Point, len(units))
	for i, unit := range units {
		point := domain.Point{
			ID:        pointIDs[i],
			LayerID:   layerID,
			Ord:       i,
			Text:      unit.Text,
			Label:     unit.Label,
			Embedding: embeddings[i],
			X:         vizCoords[i][0],
			Y:         vizCoords[i][1],
			ClusterID: labels[i],
		}

		point.RowIndices = make([]int, len(unit.RowIndices))
		for j, rowIdx := range unit.RowIndices {
			point.RowIndices[j] = datasetRows[rowIdx].Index
		}
		if len(unit.RowIndices) > 0 {
			point.Metadata = datasetRows[unit.RowIndices[0]].Values
		}

		if neighborLists != nil {
			point.Neighbors = make([]domain.PointNeighbor, len(neighborLists[i]))
			for j, neighbor := range neighborLists[i] {
				point.Neighbors[j] = domain.PointNeighbor{
					PointID:  pointIDs[neighbor.Index],
					Distance: neighbor.Distance,
				}
			}
		}

		points[i] = point
	}
	return points
}

func (gl GenerateLayerImpl) clusteringConfig(cfg domain.ClusteringConfig) domain.ClusteringConfig {
	if cfg.MinClusterSize == 0 {
		cfg.MinClusterSize = gl.defaults.Clustering.MinClusterSize
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = gl.defaults.Clustering.MinSamples
	}
	return cfg.WithDefaults()
}

// InitGenerateLayer initializes the GenerateLayer use case and registers it
// in the dependency container.
type InitGenerateLayer struct {
	Uow         domain.UnitOfWork           `resolve:""`
	Embedder    domain.BatchEmbedder        `resolve:""`
	Reducer     *projection.TwoStageReducer `resolve:""`
	Coords      domain.CoordinateStore      `resolve:""`
	TimeService domain.CurrentTimeProvider  `resolve:""`
	Logger      *log.Logger                 `resolve:""`
	Defaults    PipelineDefaults            `resolve:""`
}

// Initialize registers the GenerateLayerImpl use case in the dependency container.
func (igl InitGenerateLayer) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[GenerateLayer](NewGenerateLayerImpl(
		igl.Uow, igl.Embedder, igl.Reducer, igl.Coords, igl.TimeService, igl.Logger, igl.Defaults,
	))
	return ctx, nil
}
