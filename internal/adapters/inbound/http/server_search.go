package http

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/google/uuid"
)

// progressLogger adapts pipeline progress to server logs.
func progressLogger(logger *log.Logger, layerName string) domain.ProgressObserver {
	return domain.ProgressObserverFunc(func(current, total int, message string) {
		logger.Printf("layer %q: %d/%d %s", layerName, current, total, message)
	})
}

// SearchLayer queries a layer. `mode=vector` runs semantic search; anything
// else (or nothing) runs substring search.
func (api AtlasServer) SearchLayer(w http.ResponseWriter, r *http.Request) {
	layerID, err := uuid.Parse(r.PathValue("layerId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid layer id: %v", err)))
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, badRequest("query parameter 'q' is required"))
		return
	}

	opts, errResp := searchOptions(r)
	if errResp != nil {
		respondError(w, *errResp)
		return
	}

	var hits []domain.SearchHit
	if r.URL.Query().Get("mode") == "vector" {
		hits, err = api.VectorSearchUseCase.Execute(r.Context(), layerID, query, opts...)
	} else {
		hits, err = api.SearchLayerUseCase.Execute(r.Context(), layerID, query, opts...)
	}
	if err != nil {
		api.Logger.Printf("Error searching layer: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toHits(hits))
}

// PointNeighbors returns the stored points most similar to one point.
func (api AtlasServer) PointNeighbors(w http.ResponseWriter, r *http.Request) {
	layerID, err := uuid.Parse(r.PathValue("layerId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid layer id: %v", err)))
		return
	}
	pointID, err := uuid.Parse(r.PathValue("pointId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid point id: %v", err)))
		return
	}

	opts, errResp := searchOptions(r)
	if errResp != nil {
		respondError(w, *errResp)
		return
	}

	hits, err := api.PointNeighborsUseCase.Execute(r.Context(), layerID, pointID, opts...)
	if err != nil {
		api.Logger.Printf("Error finding neighbors: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toHits(hits))
}

func searchOptions(r *http.Request) ([]domain.SearchOption, *ErrorResp) {
	var opts []domain.SearchOption
	q := r.URL.Query()

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			errResp := badRequest("query parameter 'limit' must be a positive integer")
			return nil, &errResp
		}
		opts = append(opts, domain.WithLimit(limit))
	}
	if label := q.Get("label"); label != "" {
		opts = append(opts, domain.WithLabelFilter(label))
	}
	if clusterStr := q.Get("cluster"); clusterStr != "" {
		cluster, err := strconv.Atoi(clusterStr)
		if err != nil {
			errResp := badRequest("query parameter 'cluster' must be an integer")
			return nil, &errResp
		}
		opts = append(opts, domain.WithClusterFilter(cluster))
	}
	if columns, ok := q["metadata_column"]; ok {
		opts = append(opts, domain.WithMetadataColumns(columns...))
	}
	return opts, nil
}
