package domain

import "context"

// Default two-stage reduction parameters.
const (
	DefaultIntermediateDim          = 15
	DefaultClusteringNeighbors      = 30
	DefaultClusteringMinDistance    = 0.001
	VisualizationDim                = 2
	DefaultVisualizationNeighbors   = 15
	DefaultVisualizationMinDistance = 0.1
)

// ProjectionMetric names the distance metric used by the projection engine.
type ProjectionMetric string

// ProjectionMetric_Cosine is the only metric the pipeline uses.
const ProjectionMetric_Cosine ProjectionMetric = "cosine"

// ProjectionParams parameterizes one projection engine run.
// MinDistance must be strictly positive: the reference projector is
// numerically unstable at exactly zero.
type ProjectionParams struct {
	OutputDim   int
	Neighbors   int
	MinDistance float64
	Metric      ProjectionMetric
}

// Projector is the boundary to the external dimensionality-reduction engine.
// Implementations own session/resource release for each call.
type Projector interface {
	Project(ctx context.Context, vectors [][]float64, params ProjectionParams) ([][]float64, error)
}
