// Package projector is the HTTP client for the external dimensionality-
// reduction engine. A projection is a short-lived server-side session:
// create with the flat vector buffer and parameters, run, read the output
// buffer, then release. Release must always happen, otherwise the engine
// accumulates memory across repeated runs.
package projector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/common"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UMAPEngineClient implements domain.Projector against the reduction engine API.
type UMAPEngineClient struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewUMAPEngineClient creates a new engine client.
func NewUMAPEngineClient(baseURL string, httpClient *http.Client, logger *log.Logger) UMAPEngineClient {
	return UMAPEngineClient{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

type createProjectionRequest struct {
	Count               int       `json:"count"`
	InputDim            int       `json:"input_dim"`
	OutputDim           int       `json:"output_dim"`
	Data                []float32 `json:"data"`
	Metric              string    `json:"metric"`
	Neighbors           int       `json:"n_neighbors"`
	MinDistance         float64   `json:"min_dist"`
	NeighborIndexMethod string    `json:"neighbor_index_method"`
	InitMethod          string    `json:"init_method"`
}

type createProjectionResponse struct {
	SessionID string `json:"session_id"`
}

type runProjectionResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Project sends the embedding matrix to the engine and returns the projected
// coordinates, releasing the engine session in every path.
func (c UMAPEngineClient) Project(ctx context.Context, vectors [][]float64, params domain.ProjectionParams) ([][]float64, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.Int("points", len(vectors)),
		attribute.Int("output_dim", params.OutputDim),
	))
	defer span.End()

	if len(vectors) == 0 {
		return [][]float64{}, nil
	}
	inputDim := len(vectors[0])

	flat := make([]float32, 0, len(vectors)*inputDim)
	for _, v := range vectors {
		if len(v) != inputDim {
			err := domain.NewValidationErr(fmt.Sprintf("vector length mismatch: expected %d, got %d", inputDim, len(v)))
			telemetry.RecordErrorAndStatus(span, err)
			return nil, err
		}
		flat = append(flat, common.ToFloat32(v)...)
	}

	created, err := c.createSession(spanCtx, createProjectionRequest{
		Count:               len(vectors),
		InputDim:            inputDim,
		OutputDim:           params.OutputDim,
		Data:                flat,
		Metric:              string(params.Metric),
		Neighbors:           params.Neighbors,
		MinDistance:         params.MinDistance,
		NeighborIndexMethod: "nndescent",
		InitMethod:          "spectral",
	})
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer c.releaseSession(created.SessionID)

	run, err := c.runSession(spanCtx, created.SessionID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}

	expected := len(vectors) * params.OutputDim
	if len(run.Embedding) != expected {
		err := fmt.Errorf("engine returned %d values, expected %d", len(run.Embedding), expected)
		telemetry.RecordErrorAndStatus(span, err)
		return nil, err
	}

	coords := make([][]float64, len(vectors))
	for i := range coords {
		row := run.Embedding[i*params.OutputDim : (i+1)*params.OutputDim]
		coords[i] = common.ToFloat64(row)
	}
	return coords, nil
}

func (c UMAPEngineClient) createSession(ctx context.Context, req createProjectionRequest) (createProjectionResponse, error) {
	var resp createProjectionResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/projections", req, &resp)
	if err != nil {
		return createProjectionResponse{}, fmt.Errorf("create projection session: %w", err)
	}
	if resp.SessionID == "" {
		return createProjectionResponse{}, fmt.Errorf("create projection session: empty session id")
	}
	return resp, nil
}

func (c UMAPEngineClient) runSession(ctx context.Context, sessionID string) (runProjectionResponse, error) {
	var resp runProjectionResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/projections/"+sessionID+"/run", nil, &resp)
	if err != nil {
		return runProjectionResponse{}, fmt.Errorf("run projection session: %w", err)
	}
	return resp, nil
}

// releaseSession frees engine-side resources. It deliberately uses a fresh
// context so a cancelled projection still releases its session.
func (c UMAPEngineClient) releaseSession(sessionID string) {
	err := c.doJSON(context.Background(), http.MethodDelete, "/v1/projections/"+sessionID, nil, nil)
	if err != nil {
		c.logger.Printf("UMAPEngineClient: failed to release session %s: %v", sessionID, err)
	}
}

func (c UMAPEngineClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2xx response: %s: %s", resp.Status, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// InitUMAPEngineClient initializes the engine client and registers it as the
// primary domain.Projector.
type InitUMAPEngineClient struct {
	HTTPClient *http.Client `resolve:""`
	Logger     *log.Logger  `resolve:""`
	BaseURL    string       `config:"UMAP_ENGINE_URL"`
}

// Initialize registers the UMAPEngineClient in the dependency container.
func (i InitUMAPEngineClient) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.Projector](NewUMAPEngineClient(i.BaseURL, i.HTTPClient, i.Logger))
	return ctx, nil
}
