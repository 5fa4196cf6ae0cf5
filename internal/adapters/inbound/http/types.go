package http

import (
	"time"

	"github.com/google/uuid"
)

// Wire types of the REST surface.

type ErrorCode string

const (
	BADREQUEST    ErrorCode = "BAD_REQUEST"
	NOTFOUND      ErrorCode = "NOT_FOUND"
	INTERNALERROR ErrorCode = "INTERNAL_ERROR"
)

type ErrorResp struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

type DatasetResp struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Columns   []string  `json:"columns"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ListDatasetsResp struct {
	Items []DatasetResp `json:"items"`
}

type GenerateLayerReq struct {
	Name        string               `json:"name"`
	Provider    string               `json:"provider"`
	Model       string               `json:"model"`
	Composition CompositionConfigReq `json:"composition"`
	Clustering  *ClusteringConfigReq `json:"clustering,omitempty"`
}

type CompositionConfigReq struct {
	Mode                 string   `json:"mode"`
	Column               string   `json:"column,omitempty"`
	Columns              []string `json:"columns,omitempty"`
	Separator            string   `json:"separator,omitempty"`
	ConversationIDColumn string   `json:"conversation_id_column,omitempty"`
	SequenceColumn       string   `json:"sequence_column,omitempty"`
	Strategy             string   `json:"strategy,omitempty"`
	WindowSize           int      `json:"window_size,omitempty"`
	TurnColumns          []string `json:"turn_columns,omitempty"`
	TurnSeparator        string   `json:"turn_separator,omitempty"`
}

type ClusteringConfigReq struct {
	MinClusterSize int `json:"min_cluster_size,omitempty"`
	MinSamples     int `json:"min_samples,omitempty"`
}

type ClusterStatsResp struct {
	ClusterCount int         `json:"cluster_count"`
	NoiseCount   int         `json:"noise_count"`
	NoisePct     float64     `json:"noise_pct"`
	Sizes        map[int]int `json:"sizes"`
}

type LayerResp struct {
	ID        uuid.UUID        `json:"id"`
	DatasetID uuid.UUID        `json:"dataset_id"`
	Name      string           `json:"name"`
	Provider  string           `json:"provider"`
	Model     string           `json:"model"`
	Dimension int              `json:"dimension"`
	Active    bool             `json:"active"`
	Stats     ClusterStatsResp `json:"stats"`
	CreatedAt time.Time        `json:"created_at"`
	Points    []PointResp      `json:"points,omitempty"`
}

type PointResp struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Label      string    `json:"label,omitempty"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	ClusterID  int       `json:"cluster_id"`
	RowIndices []int     `json:"row_indices"`
}

type LayerSummaryResp struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	Mode       string    `json:"mode"`
	CreatedAt  time.Time `json:"created_at"`
	PointCount int       `json:"point_count"`
}

type ListLayersResp struct {
	Items []LayerSummaryResp `json:"items"`
}

type ReclusterReq struct {
	MinClusterSize int `json:"min_cluster_size,omitempty"`
	MinSamples     int `json:"min_samples,omitempty"`
}

type SearchHitResp struct {
	PointID  uuid.UUID `json:"point_id"`
	Distance *float64  `json:"distance,omitempty"`
}

type SearchResp struct {
	Items []SearchHitResp `json:"items"`
}
