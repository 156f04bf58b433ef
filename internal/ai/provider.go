package ai

import "context"

// EmbeddingProvider turns texts into dense vectors, one per input, in input order.
type EmbeddingProvider interface {
	Embed(ctx context.Context, inputs []string) ([][]float64, error)
}
