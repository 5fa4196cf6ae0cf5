package domain

import "context"

// EmbeddingBatchSize is the fixed number of units sent per provider call.
const EmbeddingBatchSize = 100

// ProgressObserver receives advisory one-way progress from pipeline stages.
// Implementations must not block the producer.
type ProgressObserver interface {
	OnProgress(current, total int, message string)
}

// ProgressObserverFunc adapts a function to the ProgressObserver interface.
type ProgressObserverFunc func(current, total int, message string)

// OnProgress calls the wrapped function.
func (f ProgressObserverFunc) OnProgress(current, total int, message string) {
	f(current, total, message)
}

// EmbeddingResult is the ordered vector set produced for one unit list.
// Dimension is taken from the first returned vector; zero for empty input.
type EmbeddingResult struct {
	Embeddings  [][]float64
	Dimension   int
	TotalTokens int
}

// BatchEmbedder turns composed texts into embedding vectors via an
// external provider, in fixed-size batches.
type BatchEmbedder interface {
	// EmbedTexts embeds every text in order, reporting progress around each batch.
	// A provider failure aborts the whole run with a single descriptive error.
	EmbedTexts(ctx context.Context, provider, model string, texts []string, observer ProgressObserver) (EmbeddingResult, error)
	// EmbedQuery embeds one search query string.
	EmbedQuery(ctx context.Context, provider, model, query string) ([]float64, error)
}
