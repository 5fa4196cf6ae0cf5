package http

import (
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
)

func toError(err error) ErrorResp {
	errResp := ErrorResp{}
	switch e := err.(type) {
	case *domain.ValidationErr:
		errResp.Error.Code = BADREQUEST
		errResp.Error.Message = e.Error()
	case *domain.NotFoundErr:
		errResp.Error.Code = NOTFOUND
		errResp.Error.Message = e.Error()
	default:
		errResp.Error.Code = INTERNALERROR
		errResp.Error.Message = "internal server error"
	}
	return errResp
}

func toDataset(d domain.Dataset) DatasetResp {
	return DatasetResp{
		ID:        d.ID,
		Name:      d.Name,
		Columns:   d.Columns,
		RowCount:  d.RowCount,
		CreatedAt: d.CreatedAt,
	}
}

func toStats(s domain.ClusterStats) ClusterStatsResp {
	return ClusterStatsResp{
		ClusterCount: s.ClusterCount,
		NoiseCount:   s.NoiseCount,
		NoisePct:     s.NoisePercentage,
		Sizes:        s.ClusterSizes,
	}
}

func toLayer(l domain.Layer, includePoints bool) LayerResp {
	resp := LayerResp{
		ID:        l.ID,
		DatasetID: l.DatasetID,
		Name:      l.Name,
		Provider:  l.Provider,
		Model:     l.Model,
		Dimension: l.Dimension,
		Active:    l.Active,
		Stats:     toStats(l.Stats),
		CreatedAt: l.CreatedAt,
	}
	if includePoints {
		resp.Points = make([]PointResp, len(l.Points))
		for i, p := range l.Points {
			resp.Points[i] = PointResp{
				ID:         p.ID,
				Text:       p.Text,
				Label:      p.Label,
				X:          p.X,
				Y:          p.Y,
				ClusterID:  p.ClusterID,
				RowIndices: p.RowIndices,
			}
		}
	}
	return resp
}

func toSummary(s domain.LayerSummary) LayerSummaryResp {
	return LayerSummaryResp{
		ID:         s.ID,
		Name:       s.Name,
		Active:     s.Active,
		Mode:       string(s.Mode),
		CreatedAt:  s.CreatedAt,
		PointCount: s.PointCount,
	}
}

func toHits(hits []domain.SearchHit) SearchResp {
	resp := SearchResp{Items: []SearchHitResp{}}
	for _, hit := range hits {
		resp.Items = append(resp.Items, SearchHitResp{PointID: hit.PointID, Distance: hit.Distance})
	}
	return resp
}

func toCompositionConfig(req CompositionConfigReq) domain.CompositionConfig {
	return domain.CompositionConfig{
		Mode:                 domain.CompositionMode(req.Mode),
		Column:               req.Column,
		Columns:              req.Columns,
		Separator:            req.Separator,
		ConversationIDColumn: req.ConversationIDColumn,
		SequenceColumn:       req.SequenceColumn,
		Strategy:             domain.ConversationStrategy(req.Strategy),
		WindowSize:           req.WindowSize,
		TurnColumns:          req.TurnColumns,
		TurnSeparator:        req.TurnSeparator,
	}
}
