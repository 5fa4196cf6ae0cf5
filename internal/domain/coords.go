package domain

import (
	"context"

	"github.com/google/uuid"
)

// CoordinateStore persists the stage-1 intermediate-dimensional coordinates
// of a layer as an opaque binary object, keyed by layer id. Coordinates are
// only ever read or written whole; they exist so a layer can be re-clustered
// without re-embedding.
type CoordinateStore interface {
	// SaveCoordinates writes the full coordinate matrix for a layer.
	SaveCoordinates(ctx context.Context, layerID uuid.UUID, coords [][]float64) error
	// LoadCoordinates reads the coordinate matrix back; found is false when no blob exists.
	LoadCoordinates(ctx context.Context, layerID uuid.UUID) (coords [][]float64, found bool, err error)
	// DeleteCoordinates removes the blob for a layer. Missing blobs are not an error.
	DeleteCoordinates(ctx context.Context, layerID uuid.UUID) error
}
