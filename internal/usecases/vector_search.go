package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/common"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

// VectorSearch defines the interface for semantic search over a layer. The
// query string is embedded with the layer's own provider and model; when that
// is impossible the search silently falls back to substring matching on the
// same string.
type VectorSearch interface {
	Execute(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error)
}

// VectorSearchImpl is the implementation of the VectorSearch use case.
type VectorSearchImpl struct {
	uow        domain.UnitOfWork
	embedder   domain.BatchEmbedder
	textSearch SearchLayer
	cache      *common.BoundedCache[string, []float64]
	logger     *log.Logger
	defaults   PipelineDefaults
}

// NewVectorSearchImpl creates a new instance of VectorSearchImpl.
func NewVectorSearchImpl(
	uow domain.UnitOfWork,
	embedder domain.BatchEmbedder,
	textSearch SearchLayer,
	logger *log.Logger,
	defaults PipelineDefaults,
) VectorSearchImpl {
	return VectorSearchImpl{
		uow:        uow,
		embedder:   embedder,
		textSearch: textSearch,
		cache:      common.NewBoundedCache[string, []float64](defaults.Search.EmbeddingCacheSize),
		logger:     logger,
		defaults:   defaults,
	}
}

// Execute embeds the query and runs a cosine similarity search, keeping hits
// above the similarity floor. Embedding failures fall back to text search;
// storage failures degrade to an empty result.
func (vs VectorSearchImpl) Execute(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	layer, found, err := vs.uow.Layer().GetLayer(spanCtx, layerID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return []domain.SearchHit{}, nil
	}
	if !found || layer.Provider == "" || layer.Model == "" {
		return vs.textSearch.Execute(spanCtx, layerID, query, opts...)
	}

	embedding, err := vs.embedQuery(spanCtx, layer, query)
	if err != nil {
		vs.logger.Printf("query embedding failed for layer %s, falling back to text search: %v", layerID, err)
		return vs.textSearch.Execute(spanCtx, layerID, query, opts...)
	}

	hits, err := vs.uow.Point().SearchVector(spanCtx, layerID, embedding, vs.defaults.Search.MinSimilarity, opts...)
	if err != nil {
		vs.logger.Printf("vector search failed for layer %s: %v", layerID, err)
		telemetry.RecordErrorAndStatus(span, err)
		return []domain.SearchHit{}, nil
	}
	return hits, nil
}

func (vs VectorSearchImpl) embedQuery(ctx context.Context, layer domain.Layer, query string) ([]float64, error) {
	key := fmt.Sprintf("%s|%s|%s", layer.Provider, layer.Model, query)
	if embedding, ok := vs.cache.Get(key); ok {
		return embedding, nil
	}

	embedding, err := vs.embedder.EmbedQuery(ctx, layer.Provider, layer.Model, query)
	if err != nil {
		return nil, err
	}
	vs.cache.Put(key, embedding)
	return embedding, nil
}

// InitVectorSearch initializes the VectorSearch use case and registers it in
// the dependency container.
type InitVectorSearch struct {
	Uow        domain.UnitOfWork    `resolve:""`
	Embedder   domain.BatchEmbedder `resolve:""`
	TextSearch SearchLayer          `resolve:""`
	Logger     *log.Logger          `resolve:""`
	Defaults   PipelineDefaults     `resolve:""`
}

// Initialize registers the VectorSearchImpl use case in the dependency container.
func (ivs InitVectorSearch) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[VectorSearch](NewVectorSearchImpl(
		ivs.Uow, ivs.Embedder, ivs.TextSearch, ivs.Logger, ivs.Defaults,
	))
	return ctx, nil
}
