package usecases

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter               = otel.Meter("usecases")
	EmbeddingTokensUsed metric.Int64Counter
	LayersGenerated     metric.Int64Counter
)

func init() {
	var err error
	// Tokens consumed by the embedding provider
	EmbeddingTokensUsed, err = meter.Int64Counter(
		"embedding_tokens_used_total",
		metric.WithDescription("Total embedding tokens consumed"),
	)
	if err != nil {
		panic(err)
	}

	LayersGenerated, err = meter.Int64Counter(
		"layers_generated_total",
		metric.WithDescription("Total layers generated"),
	)
	if err != nil {
		panic(err)
	}
}

// RecordEmbeddingTokens records the number of tokens used while embedding
// texts for the given model.
func RecordEmbeddingTokens(ctx context.Context, model string, totalTokens int) {
	EmbeddingTokensUsed.Add(ctx, int64(totalTokens), metric.WithAttributes(
		attribute.String("model", model),
	))
}

// RecordLayerGenerated records one completed layer generation run.
func RecordLayerGenerated(ctx context.Context, pointCount int) {
	LayersGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("point_count", pointCount),
	))
}
