// Package proofs defines the proof generation boundary and a mock
// backend for development and tests.
package proofs

import (
	"context"
)

// Generator produces an aggregation proof over encoded public inputs.
// Implementations may take minutes per proof; respect the context.
type Generator interface {
	GenerateProof(ctx context.Context, publicValues []byte) ([]byte, error)
}
