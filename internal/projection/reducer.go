// Package projection implements the two-stage dimensionality reduction of
// embedding matrices: a neighborhood-graph projection served by an external
// engine, with a power-iteration PCA fallback when the engine is unavailable.
package projection

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont/depend"
)

// visualization fallback bounds and jitter amplitude
const (
	vizAxisMin   = 0
	vizAxisMax   = 100
	jitterExtent = 0.25
)

// TwoStageReducer projects one embedding matrix twice: to an intermediate
// dimensionality for density clustering, and to 2-D for rendering.
type TwoStageReducer struct {
	primary         domain.Projector
	logger          *log.Logger
	rng             *rand.Rand
	IntermediateDim int
}

// NewTwoStageReducer creates a reducer over the given primary projector.
// A nil projector means the PCA fallback serves every call.
func NewTwoStageReducer(primary domain.Projector, logger *log.Logger) *TwoStageReducer {
	return &TwoStageReducer{
		primary:         primary,
		logger:          logger,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		IntermediateDim: domain.DefaultIntermediateDim,
	}
}

// ReduceForClustering projects vectors to the intermediate dimensionality.
// The output keeps raw distances: the fallback applies no normalization or
// jitter, since density clustering depends on absolute distances.
func (r *TwoStageReducer) ReduceForClustering(ctx context.Context, vectors [][]float64) ([][]float64, error) {
	if len(vectors) == 0 {
		return [][]float64{}, nil
	}

	params := domain.ProjectionParams{
		OutputDim:   r.IntermediateDim,
		Neighbors:   domain.DefaultClusteringNeighbors,
		MinDistance: domain.DefaultClusteringMinDistance,
		Metric:      domain.ProjectionMetric_Cosine,
	}
	if coords, ok := r.tryPrimary(ctx, vectors, params); ok {
		return coords, nil
	}
	return PCAProject(vectors, params.OutputDim, r.rng), nil
}

// ReduceForVisualization projects vectors to 2-D. The primary output is left
// un-rescaled; renderers compute their own viewport bounds. The fallback
// normalizes each axis into [0,100] and adds a small uniform jitter purely to
// avoid exactly-overlapping rendered points.
func (r *TwoStageReducer) ReduceForVisualization(ctx context.Context, vectors [][]float64) ([][]float64, error) {
	if len(vectors) == 0 {
		return [][]float64{}, nil
	}

	params := domain.ProjectionParams{
		OutputDim:   domain.VisualizationDim,
		Neighbors:   domain.DefaultVisualizationNeighbors,
		MinDistance: domain.DefaultVisualizationMinDistance,
		Metric:      domain.ProjectionMetric_Cosine,
	}
	if coords, ok := r.tryPrimary(ctx, vectors, params); ok {
		return coords, nil
	}

	coords := PCAProject(vectors, params.OutputDim, r.rng)
	for axis := 0; axis < params.OutputDim; axis++ {
		minMaxNormalize(coords, axis, vizAxisMin, vizAxisMax)
	}
	for _, c := range coords {
		for axis := range c {
			c[axis] += r.rng.Float64()*2*jitterExtent - jitterExtent
		}
	}
	return coords, nil
}

// tryPrimary runs the primary projector, degrading to the fallback on any error.
func (r *TwoStageReducer) tryPrimary(ctx context.Context, vectors [][]float64, params domain.ProjectionParams) ([][]float64, bool) {
	if r.primary == nil {
		return nil, false
	}
	coords, err := r.primary.Project(ctx, vectors, params)
	if err != nil {
		r.logger.Printf("TwoStageReducer: primary projector failed, falling back to PCA: %v", err)
		return nil, false
	}
	return coords, true
}

// InitTwoStageReducer registers the TwoStageReducer in the dependency container.
type InitTwoStageReducer struct {
	Projector       domain.Projector `resolve:""`
	Logger          *log.Logger      `resolve:""`
	IntermediateDim int              `config:"REDUCER_INTERMEDIATE_DIM" default:"15"`
}

// Initialize builds the reducer and registers it.
func (i InitTwoStageReducer) Initialize(ctx context.Context) (context.Context, error) {
	reducer := NewTwoStageReducer(i.Projector, i.Logger)
	if i.IntermediateDim > 0 {
		reducer.IntermediateDim = i.IntermediateDim
	}
	depend.Register(reducer)
	return ctx, nil
}
