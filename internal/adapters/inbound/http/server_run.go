package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/usecases"
	"github.com/rs/cors"
)

// AtlasServer is the REST API HTTP server for the semantic atlas.
type AtlasServer struct {
	Port                  int                     `config:"HTTP_PORT" default:"8080"`
	Logger                *log.Logger             `resolve:""`
	LoadDatasetUseCase    usecases.LoadDataset    `resolve:""`
	ListDatasetsUseCase   usecases.ListDatasets   `resolve:""`
	GenerateLayerUseCase  usecases.GenerateLayer  `resolve:""`
	ReclusterLayerUseCase usecases.ReclusterLayer `resolve:""`
	ActivateLayerUseCase  usecases.ActivateLayer  `resolve:""`
	DeleteLayerUseCase    usecases.DeleteLayer    `resolve:""`
	ListLayersUseCase     usecases.ListLayers     `resolve:""`
	GetActiveLayerUseCase usecases.GetActiveLayer `resolve:""`
	SearchLayerUseCase    usecases.SearchLayer    `resolve:""`
	VectorSearchUseCase   usecases.VectorSearch   `resolve:""`
	PointNeighborsUseCase usecases.PointNeighbors `resolve:""`
}

// Run starts the HTTP server for the AtlasServer.
func (api AtlasServer) Run(ctx context.Context) error {

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Register introspection endpoint for debugging and testing purposes
	mux.HandleFunc("/introspect", IntrospectHandler)

	mux.HandleFunc("POST /api/datasets", api.LoadDataset)
	mux.HandleFunc("GET /api/datasets", api.ListDatasets)
	mux.HandleFunc("POST /api/datasets/{datasetId}/layers", api.GenerateLayer)
	mux.HandleFunc("GET /api/datasets/{datasetId}/layers", api.ListLayers)
	mux.HandleFunc("GET /api/datasets/{datasetId}/layers/active", api.GetActiveLayer)
	mux.HandleFunc("POST /api/layers/{layerId}/activate", api.ActivateLayer)
	mux.HandleFunc("POST /api/layers/{layerId}/recluster", api.ReclusterLayer)
	mux.HandleFunc("DELETE /api/layers/{layerId}", api.DeleteLayer)
	mux.HandleFunc("GET /api/layers/{layerId}/search", api.SearchLayer)
	mux.HandleFunc("GET /api/layers/{layerId}/points/{pointId}/neighbors", api.PointNeighbors)

	var h http.Handler = telemetry.Middleware("atlas-api")(mux)

	// Apply CORS at the top-level so preflight requests hit it, too.
	h = cors.AllowAll().Handler(h)

	s := &http.Server{
		Handler: h,
		Addr:    fmt.Sprintf(":%d", api.Port),
	}

	errCh := make(chan error, 1)
	go func() {
		api.Logger.Printf("AtlasServer: Listening on port %d", api.Port)
		errCh <- s.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		if err != nil {
			api.Logger.Printf("AtlasServer: error during shutdown: %v", err)
		} else {
			api.Logger.Println("AtlasServer: stopped")
		}
		return err
	case err := <-errCh:
		return err
	}
}

// IsReady checks if the AtlasServer is ready by performing a health check.
func (api AtlasServer) IsReady(ctx context.Context) error {
	resp, err := http.Get(fmt.Sprintf("http://:%d/healthz", api.Port))
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
