package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ListLayersInput struct {
	DatasetID string `json:"dataset_id" jsonschema:"the dataset to list layers for"`
}

type LayerSummaryOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Mode       string `json:"mode"`
	PointCount int    `json:"point_count"`
	CreatedAt  string `json:"created_at"`
}

type ListLayersOutput struct {
	Layers []LayerSummaryOutput `json:"layers"`
}

type SearchInput struct {
	LayerID string `json:"layer_id" jsonschema:"the layer to search"`
	Query   string `json:"query" jsonschema:"the search query"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Label   string `json:"label,omitempty" jsonschema:"restrict results to points with this group label"`
}

type NeighborsInput struct {
	LayerID string `json:"layer_id" jsonschema:"the layer the point belongs to"`
	PointID string `json:"point_id" jsonschema:"the point to find neighbors of"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of neighbors"`
}

type HitOutput struct {
	PointID  string   `json:"point_id"`
	Text     string   `json:"text,omitempty"`
	Label    string   `json:"label,omitempty"`
	Cluster  int      `json:"cluster"`
	Distance *float64 `json:"distance,omitempty"`
}

type SearchOutput struct {
	Hits []HitOutput `json:"hits"`
}

func (s AtlasMCPServer) listLayers(ctx context.Context, req *mcp.CallToolRequest, input ListLayersInput) (*mcp.CallToolResult, ListLayersOutput, error) {
	datasetID, err := uuid.Parse(input.DatasetID)
	if err != nil {
		return nil, ListLayersOutput{}, fmt.Errorf("invalid dataset id: %w", err)
	}

	summaries, err := s.ListLayersUseCase.Execute(ctx, datasetID)
	if err != nil {
		return nil, ListLayersOutput{}, err
	}

	out := ListLayersOutput{Layers: []LayerSummaryOutput{}}
	for _, sm := range summaries {
		out.Layers = append(out.Layers, LayerSummaryOutput{
			ID:         sm.ID.String(),
			Name:       sm.Name,
			Active:     sm.Active,
			Mode:       string(sm.Mode),
			PointCount: sm.PointCount,
			CreatedAt:  sm.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

func (s AtlasMCPServer) searchLayer(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	layerID, opts, err := searchScope(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	hits, err := s.SearchLayerUseCase.Execute(ctx, layerID, input.Query, opts...)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, s.enrichHits(ctx, hits), nil
}

func (s AtlasMCPServer) vectorSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	layerID, opts, err := searchScope(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	hits, err := s.VectorSearchUseCase.Execute(ctx, layerID, input.Query, opts...)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, s.enrichHits(ctx, hits), nil
}

func (s AtlasMCPServer) pointNeighbors(ctx context.Context, req *mcp.CallToolRequest, input NeighborsInput) (*mcp.CallToolResult, SearchOutput, error) {
	layerID, err := uuid.Parse(input.LayerID)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("invalid layer id: %w", err)
	}
	pointID, err := uuid.Parse(input.PointID)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("invalid point id: %w", err)
	}

	var opts []domain.SearchOption
	if input.Limit > 0 {
		opts = append(opts, domain.WithLimit(input.Limit))
	}

	hits, err := s.PointNeighborsUseCase.Execute(ctx, layerID, pointID, opts...)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, s.enrichHits(ctx, hits), nil
}

func searchScope(input SearchInput) (uuid.UUID, []domain.SearchOption, error) {
	layerID, err := uuid.Parse(input.LayerID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid layer id: %w", err)
	}

	var opts []domain.SearchOption
	if input.Limit > 0 {
		opts = append(opts, domain.WithLimit(input.Limit))
	}
	if input.Label != "" {
		opts = append(opts, domain.WithLabelFilter(input.Label))
	}
	return layerID, opts, nil
}

// enrichHits resolves hit ids into readable text so the calling assistant
// gets content, not just identifiers. Lookup failures drop the payload and
// keep the id.
func (s AtlasMCPServer) enrichHits(ctx context.Context, hits []domain.SearchHit) SearchOutput {
	out := SearchOutput{Hits: []HitOutput{}}
	for _, hit := range hits {
		ho := HitOutput{PointID: hit.PointID.String(), Distance: hit.Distance}
		point, found, err := s.Uow.Point().GetPoint(ctx, hit.PointID)
		if err != nil {
			s.Logger.Printf("point lookup failed for %s: %v", hit.PointID, err)
		} else if found {
			ho.Text = point.Text
			ho.Label = point.Label
			ho.Cluster = point.ClusterID
		}
		out.Hits = append(out.Hits, ho)
	}
	return out
}
