package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoiseClusterID is the reserved cluster id for points density
// clustering could not assign to any cluster.
const NoiseClusterID = -1

// PointNeighbor is one precomputed nearest neighbor of a point.
type PointNeighbor struct {
	PointID  uuid.UUID `json:"point_id"`
	Distance float64   `json:"distance"`
}

// Point is the persisted unit of a layer. Immutable once saved except for
// ClusterID, which re-clustering may recompute.
type Point struct {
	ID         uuid.UUID
	LayerID    uuid.UUID
	Ord        int
	Text       string
	Label      string
	Metadata   map[string]Value
	Embedding  []float64
	X          float64
	Y          float64
	ClusterID  int
	Neighbors  []PointNeighbor
	RowIndices []int
}

// Layer is one complete pipeline run persisted for one dataset.
type Layer struct {
	ID             uuid.UUID
	DatasetID      uuid.UUID
	Name           string
	Provider       string
	Model          string
	Dimension      int
	Composition    CompositionConfig
	Clustering     ClusteringConfig
	Stats          ClusterStats
	Active         bool
	Points         []Point
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Validate checks the layer metadata before persisting.
func (l Layer) Validate() error {
	if l.Name == "" {
		return NewValidationErr("layer name cannot be empty")
	}
	if l.DatasetID == uuid.Nil {
		return NewValidationErr("layer must belong to a dataset")
	}
	return l.Composition.Validate()
}

// LayerSummary is the listing view of a layer: metadata and point count,
// never the point payload itself.
type LayerSummary struct {
	ID         uuid.UUID
	Name       string
	Active     bool
	Mode       CompositionMode
	CreatedAt  time.Time
	PointCount int
}

// SearchHit is one ordered result of a layer query. Distance is nil for
// full-text matches, where no meaningful distance exists.
type SearchHit struct {
	PointID  uuid.UUID
	Distance *float64
}

// SearchParams holds common scoping options for layer queries.
type SearchParams struct {
	Limit           int
	Label           *string
	ClusterID       *int
	MetadataColumns []string
}

// SearchOption mutates SearchParams.
type SearchOption func(*SearchParams)

// WithLimit caps the number of results.
func WithLimit(limit int) SearchOption {
	return func(p *SearchParams) { p.Limit = limit }
}

// WithLabelFilter scopes a query to points carrying the given group label.
func WithLabelFilter(label string) SearchOption {
	return func(p *SearchParams) { p.Label = &label }
}

// WithClusterFilter scopes a query to points in the given cluster.
func WithClusterFilter(clusterID int) SearchOption {
	return func(p *SearchParams) { p.ClusterID = &clusterID }
}

// WithMetadataColumns adds metadata keys to the designated text columns
// searched by full-text queries.
func WithMetadataColumns(columns ...string) SearchOption {
	return func(p *SearchParams) { p.MetadataColumns = columns }
}

// LayerRepository manages layer metadata. Point payloads live in PointRepository.
type LayerRepository interface {
	// UpsertLayer inserts or replaces layer metadata.
	UpsertLayer(ctx context.Context, layer Layer) error
	// GetLayer retrieves layer metadata by id.
	GetLayer(ctx context.Context, id uuid.UUID) (Layer, bool, error)
	// GetActiveLayer retrieves the single active layer of a dataset.
	GetActiveLayer(ctx context.Context, datasetID uuid.UUID) (Layer, bool, error)
	// ListLayers lists layer summaries for a dataset.
	ListLayers(ctx context.Context, datasetID uuid.UUID) ([]LayerSummary, error)
	// SetActiveLayer marks one layer active and all dataset siblings inactive.
	SetActiveLayer(ctx context.Context, datasetID, layerID uuid.UUID) error
	// UpdateClustering replaces the clustering configuration and statistics of a layer.
	UpdateClustering(ctx context.Context, layerID uuid.UUID, cfg ClusteringConfig, stats ClusterStats) error
	// TouchLastAccessed updates the last-accessed timestamp of a layer.
	TouchLastAccessed(ctx context.Context, layerID uuid.UUID, at time.Time) error
	// DeleteLayer removes layer metadata.
	DeleteLayer(ctx context.Context, id uuid.UUID) error
}

// PointRepository manages point payloads and serves layer queries.
type PointRepository interface {
	// InsertPoints bulk-inserts points in fixed-size chunks.
	InsertPoints(ctx context.Context, points []Point) error
	// DeletePointsByLayer removes every point of a layer.
	DeletePointsByLayer(ctx context.Context, layerID uuid.UUID) error
	// ListPoints returns the full point set of a layer in insertion order.
	ListPoints(ctx context.Context, layerID uuid.UUID) ([]Point, error)
	// GetPoint retrieves one point by id.
	GetPoint(ctx context.Context, id uuid.UUID) (Point, bool, error)
	// UpdateClusterIDs replaces cluster labels, indexed by point insertion order.
	UpdateClusterIDs(ctx context.Context, layerID uuid.UUID, labels []int) error
	// SearchText runs a case-insensitive substring match over the designated text columns.
	SearchText(ctx context.Context, layerID uuid.UUID, query string, opts ...SearchOption) ([]SearchHit, error)
	// SearchVector returns points whose cosine similarity to the query vector exceeds minSimilarity.
	SearchVector(ctx context.Context, layerID uuid.UUID, embedding []float64, minSimilarity float64, opts ...SearchOption) ([]SearchHit, error)
	// NeighborsOfPoint returns the stored points most similar to the given point, excluding itself.
	NeighborsOfPoint(ctx context.Context, layerID, pointID uuid.UUID, opts ...SearchOption) ([]SearchHit, error)
}
