package driven

import "context"

// EmbeddingService maps text to a fixed-length vector. It is the only source
// of vector semantics in lens and must be deterministic for a given model:
// the same text always yields the same vector.
type EmbeddingService interface {
	Provider

	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns exactly one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length every call returns.
	Dimensions() int
}
