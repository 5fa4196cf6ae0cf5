package projector

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/stretchr/testify/assert"
)

// engineServer fakes the projection engine session lifecycle and records
// which endpoints were hit.
type engineServer struct {
	*httptest.Server
	created  []createProjectionRequest
	ran      []string
	released []string
}

func newEngineServer(t *testing.T, embedding []float32) *engineServer {
	t.Helper()
	es := &engineServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/projections", func(w http.ResponseWriter, r *http.Request) {
		var req createProjectionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		es.created = append(es.created, req)
		assert.NoError(t, json.NewEncoder(w).Encode(createProjectionResponse{SessionID: "sess-1"}))
	})
	mux.HandleFunc("POST /v1/projections/{id}/run", func(w http.ResponseWriter, r *http.Request) {
		es.ran = append(es.ran, r.PathValue("id"))
		assert.NoError(t, json.NewEncoder(w).Encode(runProjectionResponse{Embedding: embedding}))
	})
	mux.HandleFunc("DELETE /v1/projections/{id}", func(w http.ResponseWriter, r *http.Request) {
		es.released = append(es.released, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	es.Server = httptest.NewServer(mux)
	return es
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestUMAPEngineClient_Project(t *testing.T) {
	params := domain.ProjectionParams{
		OutputDim:   2,
		Neighbors:   15,
		MinDistance: 0.1,
		Metric:      domain.ProjectionMetric_Cosine,
	}

	t.Run("projects-and-releases-session", func(t *testing.T) {
		server := newEngineServer(t, []float32{1, 2, 3, 4})
		defer server.Close()

		client := NewUMAPEngineClient(server.URL, server.Client(), discardLogger())
		coords, err := client.Project(context.Background(),
			[][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}, params)

		assert.NoError(t, err)
		assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, coords)

		assert.Len(t, server.created, 1)
		assert.Equal(t, 2, server.created[0].Count)
		assert.Equal(t, 3, server.created[0].InputDim)
		assert.Equal(t, 2, server.created[0].OutputDim)
		assert.Equal(t, "cosine", server.created[0].Metric)
		assert.Len(t, server.created[0].Data, 6, "vectors are sent as one flat buffer")

		assert.Equal(t, []string{"sess-1"}, server.ran)
		assert.Equal(t, []string{"sess-1"}, server.released, "the session is always released")
	})

	t.Run("releases-session-on-bad-output", func(t *testing.T) {
		server := newEngineServer(t, []float32{1, 2, 3})
		defer server.Close()

		client := NewUMAPEngineClient(server.URL, server.Client(), discardLogger())
		_, err := client.Project(context.Background(),
			[][]float64{{0.1, 0.2}, {0.3, 0.4}}, params)

		assert.ErrorContains(t, err, "engine returned 3 values, expected 4")
		assert.Equal(t, []string{"sess-1"}, server.released)
	})

	t.Run("empty-input-short-circuits", func(t *testing.T) {
		server := newEngineServer(t, nil)
		defer server.Close()

		client := NewUMAPEngineClient(server.URL, server.Client(), discardLogger())
		coords, err := client.Project(context.Background(), nil, params)

		assert.NoError(t, err)
		assert.Empty(t, coords)
		assert.Empty(t, server.created)
	})

	t.Run("ragged-vectors-rejected", func(t *testing.T) {
		server := newEngineServer(t, nil)
		defer server.Close()

		client := NewUMAPEngineClient(server.URL, server.Client(), discardLogger())
		_, err := client.Project(context.Background(),
			[][]float64{{1, 2, 3}, {4, 5}}, params)

		assert.ErrorContains(t, err, "vector length mismatch")
		assert.Empty(t, server.created)
	})

	t.Run("engine-error-propagates", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "out of memory", http.StatusInternalServerError)
		}))
		defer failing.Close()

		client := NewUMAPEngineClient(failing.URL, failing.Client(), discardLogger())
		_, err := client.Project(context.Background(), [][]float64{{1, 2}}, params)

		assert.ErrorContains(t, err, "create projection session")
	})
}
