package http

import (
	"net/http"
)

// LoadDataset imports a CSV stream as a new dataset. The dataset name comes
// from the `name` query parameter; the request body is the raw CSV.
func (api AtlasServer) LoadDataset(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, badRequest("query parameter 'name' is required"))
		return
	}
	defer r.Body.Close() //nolint:errcheck

	dataset, err := api.LoadDatasetUseCase.Execute(r.Context(), name, r.Body)
	if err != nil {
		api.Logger.Printf("Error loading dataset: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusCreated, toDataset(dataset))
}

// ListDatasets lists the imported datasets.
func (api AtlasServer) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := api.ListDatasetsUseCase.Execute(r.Context())
	if err != nil {
		api.Logger.Printf("Error listing datasets: %v", err)
		respondError(w, toError(err))
		return
	}

	resp := ListDatasetsResp{Items: []DatasetResp{}}
	for _, d := range datasets {
		resp.Items = append(resp.Items, toDataset(d))
	}
	respondJSON(w, http.StatusOK, resp)
}
