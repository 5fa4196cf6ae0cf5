package mcp

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/usecases"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AtlasMCPServer exposes the atlas query surface as MCP tools so assistants
// can explore layers conversationally. It serves the streamable HTTP
// transport on its own port, separate from the REST API.
type AtlasMCPServer struct {
	Port                  int                     `config:"MCP_PORT" default:"8090"`
	Logger                *log.Logger             `resolve:""`
	Uow                   domain.UnitOfWork       `resolve:""`
	ListLayersUseCase     usecases.ListLayers     `resolve:""`
	SearchLayerUseCase    usecases.SearchLayer    `resolve:""`
	VectorSearchUseCase   usecases.VectorSearch   `resolve:""`
	PointNeighborsUseCase usecases.PointNeighbors `resolve:""`
}

func (s AtlasMCPServer) buildServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "semantic-atlas",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_layers",
		Description: "List the semantic map layers of a dataset, including which one is active.",
	}, s.listLayers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_layer",
		Description: "Case-insensitive substring search over the texts of a layer.",
	}, s.searchLayer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vector_search",
		Description: "Semantic similarity search over a layer using the layer's embedding model.",
	}, s.vectorSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "point_neighbors",
		Description: "Return the stored points most similar to one point of a layer.",
	}, s.pointNeighbors)

	return server
}

// Run starts the MCP streamable HTTP endpoint.
func (s AtlasMCPServer) Run(ctx context.Context) error {
	server := s.buildServer()

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/mcp", handler)

	hs := &http.Server{
		Handler: mux,
		Addr:    fmt.Sprintf(":%d", s.Port),
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Printf("AtlasMCPServer: Listening on port %d", s.Port)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := hs.Shutdown(shutdownCtx)
		if err != nil {
			s.Logger.Printf("AtlasMCPServer: error during shutdown: %v", err)
		} else {
			s.Logger.Println("AtlasMCPServer: stopped")
		}
		return err
	case err := <-errCh:
		return err
	}
}

// IsReady checks if the MCP endpoint is up.
func (s AtlasMCPServer) IsReady(ctx context.Context) error {
	resp, err := http.Get(fmt.Sprintf("http://:%d/healthz", s.Port))
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
