package modelrunner

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BatchEmbedder implements domain.BatchEmbedder against the model runner API.
// Texts are sent in fixed-size batches; a provider failure aborts the whole
// run. Retry policy belongs to the caller, not to this component.
type BatchEmbedder struct {
	client    DRMAPIClient
	batchSize int
}

// NewBatchEmbedder creates a BatchEmbedder. A non-positive batchSize selects
// the contract default of domain.EmbeddingBatchSize.
func NewBatchEmbedder(client DRMAPIClient, batchSize int) BatchEmbedder {
	if batchSize <= 0 {
		batchSize = domain.EmbeddingBatchSize
	}
	return BatchEmbedder{client: client, batchSize: batchSize}
}

// EmbedTexts embeds every text in order and reports progress before and after
// each batch and once on completion.
func (be BatchEmbedder) EmbedTexts(ctx context.Context, provider, model string, texts []string, observer domain.ProgressObserver) (domain.EmbeddingResult, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.Int("texts", len(texts)),
	))
	defer span.End()

	result := domain.EmbeddingResult{Embeddings: [][]float64{}}
	total := len(texts)
	if total == 0 {
		notify(observer, 0, 0, "nothing to embed")
		return result, nil
	}

	for start := 0; start < total; start += be.batchSize {
		end := start + be.batchSize
		if end > total {
			end = total
		}
		notify(observer, start, total, fmt.Sprintf("embedding units %d-%d of %d", start+1, end, total))

		resp, err := be.client.Embeddings(spanCtx, EmbeddingsRequest{
			Model: model,
			Input: texts[start:end],
		})
		if err != nil {
			providerErr := domain.NewProviderErr(provider, model, err)
			telemetry.RecordErrorAndStatus(span, providerErr)
			return domain.EmbeddingResult{}, providerErr
		}
		if len(resp.Data) != end-start {
			providerErr := domain.NewProviderErr(provider, model,
				fmt.Errorf("expected %d embeddings, got %d", end-start, len(resp.Data)))
			telemetry.RecordErrorAndStatus(span, providerErr)
			return domain.EmbeddingResult{}, providerErr
		}

		for _, data := range resp.Data {
			if result.Dimension == 0 {
				result.Dimension = len(data.Embedding)
			}
			if len(data.Embedding) != result.Dimension {
				providerErr := domain.NewProviderErr(provider, model,
					fmt.Errorf("vector length mismatch: expected %d, got %d", result.Dimension, len(data.Embedding)))
				telemetry.RecordErrorAndStatus(span, providerErr)
				return domain.EmbeddingResult{}, providerErr
			}
			result.Embeddings = append(result.Embeddings, data.Embedding)
		}
		result.TotalTokens += resp.Usage.TotalTokens

		notify(observer, end, total, fmt.Sprintf("embedded %d of %d units", end, total))
	}

	notify(observer, total, total, "embedding complete")
	span.SetAttributes(attribute.Int("dimension", result.Dimension))
	return result, nil
}

// EmbedQuery embeds a single search query string.
func (be BatchEmbedder) EmbedQuery(ctx context.Context, provider, model, query string) ([]float64, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
	))
	defer span.End()

	resp, err := be.client.Embeddings(spanCtx, EmbeddingsRequest{
		Model: model,
		Input: query,
	})
	if err != nil {
		providerErr := domain.NewProviderErr(provider, model, err)
		telemetry.RecordErrorAndStatus(span, providerErr)
		return nil, providerErr
	}
	if len(resp.Data) == 0 {
		providerErr := domain.NewProviderErr(provider, model, fmt.Errorf("empty embedding response"))
		telemetry.RecordErrorAndStatus(span, providerErr)
		return nil, providerErr
	}
	return resp.Data[0].Embedding, nil
}

func notify(observer domain.ProgressObserver, current, total int, message string) {
	if observer == nil {
		return
	}
	observer.OnProgress(current, total, message)
}

// InitBatchEmbedder initializes the BatchEmbedder and registers it in the dependency container.
type InitBatchEmbedder struct {
	HTTPClient *http.Client `resolve:""`
	BaseURL    string       `config:"MODEL_RUNNER_URL"`
	APIKey     string       `config:"MODEL_RUNNER_API_KEY" default:""`
	BatchSize  int          `config:"EMBEDDING_BATCH_SIZE" default:"100"`
}

// Initialize registers the BatchEmbedder in the dependency container.
func (i InitBatchEmbedder) Initialize(ctx context.Context) (context.Context, error) {
	client := NewDRMAPIClient(i.BaseURL, i.APIKey, i.HTTPClient)
	depend.Register[domain.BatchEmbedder](NewBatchEmbedder(client, i.BatchSize))
	return ctx, nil
}
