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

// PointNeighbors defines the interface for finding the stored points most
// similar to one point of a layer.
type PointNeighbors interface {
	Execute(ctx context.Context, layerID, pointID uuid.UUID, opts ...domain.SearchOption) ([]domain.SearchHit, error)
}

// PointNeighborsImpl is the implementation of the PointNeighbors use case.
type PointNeighborsImpl struct {
	uow      domain.UnitOfWork
	logger   *log.Logger
	defaults PipelineDefaults
}

// NewPointNeighborsImpl creates a new instance of PointNeighborsImpl.
func NewPointNeighborsImpl(uow domain.UnitOfWork, logger *log.Logger, defaults PipelineDefaults) PointNeighborsImpl {
	return PointNeighborsImpl{
		uow:      uow,
		logger:   logger,
		defaults: defaults,
	}
}

// Execute returns the nearest stored points by cosine distance, the anchor
// point excluded. An unknown point is an input error; storage failures on the
// search itself degrade to an empty result.
func (pn PointNeighborsImpl) Execute(ctx context.Context, layerID, pointID uuid.UUID, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	point, found, err := pn.uow.Point().GetPoint(spanCtx, pointID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	if !found || point.LayerID != layerID {
		err := domain.NewNotFoundErr(fmt.Sprintf("point %s not found in layer %s", pointID, layerID))
		telemetry.RecordErrorAndStatus(span, err)
		return nil, err
	}

	// Precomputed neighbor lists saved with the layer serve small point
	// sets without touching the vector index.
	if len(point.Neighbors) > 0 {
		return pn.fromPrecomputed(point, opts...), nil
	}

	opts = append([]domain.SearchOption{domain.WithLimit(pn.defaults.Neighbors.Count)}, opts...)
	hits, err := pn.uow.Point().NeighborsOfPoint(spanCtx, layerID, pointID, opts...)
	if err != nil {
		pn.logger.Printf("neighbor search failed for point %s: %v", pointID, err)
		telemetry.RecordErrorAndStatus(span, err)
		return []domain.SearchHit{}, nil
	}
	return hits, nil
}

func (pn PointNeighborsImpl) fromPrecomputed(point domain.Point, opts ...domain.SearchOption) []domain.SearchHit {
	params := domain.SearchParams{Limit: pn.defaults.Neighbors.Count}
	for _, opt := range opts {
		opt(&params)
	}

	hits := make([]domain.SearchHit, 0, len(point.Neighbors))
	for _, neighbor := range point.Neighbors {
		if params.Limit > 0 && len(hits) >= params.Limit {
			break
		}
		distance := neighbor.Distance
		hits = append(hits, domain.SearchHit{PointID: neighbor.PointID, Distance: &distance})
	}
	return hits
}

// InitPointNeighbors initializes the PointNeighbors use case and registers it
// in the dependency container.
type InitPointNeighbors struct {
	Uow      domain.UnitOfWork `resolve:""`
	Logger   *log.Logger       `resolve:""`
	Defaults PipelineDefaults  `resolve:""`
}

// Initialize registers the PointNeighborsImpl use case in the dependency container.
func (ipn InitPointNeighbors) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[PointNeighbors](NewPointNeighborsImpl(ipn.Uow, ipn.Logger, ipn.Defaults))
	return ctx, nil
}
