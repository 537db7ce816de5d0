package domain

import (
	"context"
	"errors"
)

// Capability failures are wrapped in one of these sentinels so callers can
// classify them with errors.Is without depending on provider error types.
var (
	ErrEmbedding  = errors.New("embedding failed")
	ErrGeneration = errors.New("generation failed")
)

// Embedder turns texts into vector representations. A call may carry many
// texts; the result holds exactly one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Generator produces an answer from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
