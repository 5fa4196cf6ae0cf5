package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/usecases"
	"github.com/google/uuid"
)

// GenerateLayer runs the full pipeline for a dataset and returns the saved
// layer without its point payload.
func (api AtlasServer) GenerateLayer(w http.ResponseWriter, r *http.Request) {
	datasetID, err := uuid.Parse(r.PathValue("datasetId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid dataset id: %v", err)))
		return
	}

	var req GenerateLayerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	params := usecases.GenerateLayerParams{
		DatasetID:   datasetID,
		Name:        req.Name,
		Provider:    req.Provider,
		Model:       req.Model,
		Composition: toCompositionConfig(req.Composition),
	}
	if req.Clustering != nil {
		params.Clustering = domain.ClusteringConfig{
			MinClusterSize: req.Clustering.MinClusterSize,
			MinSamples:     req.Clustering.MinSamples,
		}
	}

	layer, err := api.GenerateLayerUseCase.Execute(r.Context(), params, progressLogger(api.Logger, req.Name))
	if err != nil {
		api.Logger.Printf("Error generating layer: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusCreated, toLayer(layer, false))
}

// ListLayers lists the stored layers of a dataset.
func (api AtlasServer) ListLayers(w http.ResponseWriter, r *http.Request) {
	datasetID, err := uuid.Parse(r.PathValue("datasetId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid dataset id: %v", err)))
		return
	}

	summaries, err := api.ListLayersUseCase.Execute(r.Context(), datasetID)
	if err != nil {
		api.Logger.Printf("Error listing layers: %v", err)
		respondError(w, toError(err))
		return
	}

	resp := ListLayersResp{Items: []LayerSummaryResp{}}
	for _, summary := range summaries {
		resp.Items = append(resp.Items, toSummary(summary))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetActiveLayer returns the active layer of a dataset with its points.
func (api AtlasServer) GetActiveLayer(w http.ResponseWriter, r *http.Request) {
	datasetID, err := uuid.Parse(r.PathValue("datasetId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid dataset id: %v", err)))
		return
	}

	layer, err := api.GetActiveLayerUseCase.Execute(r.Context(), datasetID)
	if err != nil {
		api.Logger.Printf("Error loading active layer: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toLayer(layer, true))
}

// ActivateLayer flips the active layer of a dataset.
func (api AtlasServer) ActivateLayer(w http.ResponseWriter, r *http.Request) {
	layerID, err := uuid.Parse(r.PathValue("layerId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid layer id: %v", err)))
		return
	}

	if err := api.ActivateLayerUseCase.Execute(r.Context(), layerID); err != nil {
		api.Logger.Printf("Error activating layer: %v", err)
		respondError(w, toError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReclusterLayer recomputes the cluster labels of a layer.
func (api AtlasServer) ReclusterLayer(w http.ResponseWriter, r *http.Request) {
	layerID, err := uuid.Parse(r.PathValue("layerId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid layer id: %v", err)))
		return
	}

	var req ReclusterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	stats, err := api.ReclusterLayerUseCase.Execute(r.Context(), layerID, domain.ClusteringConfig{
		MinClusterSize: req.MinClusterSize,
		MinSamples:     req.MinSamples,
	})
	if err != nil {
		api.Logger.Printf("Error re-clustering layer: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toStats(stats))
}

// DeleteLayer removes a layer, its points and its coordinate blob.
func (api AtlasServer) DeleteLayer(w http.ResponseWriter, r *http.Request) {
	layerID, err := uuid.Parse(r.PathValue("layerId"))
	if err != nil {
		respondError(w, badRequest(fmt.Sprintf("invalid layer id: %v", err)))
		return
	}

	if err := api.DeleteLayerUseCase.Execute(r.Context(), layerID); err != nil {
		api.Logger.Printf("Error deleting layer: %v", err)
		respondError(w, toError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
