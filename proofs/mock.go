package proofs

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// MockGenerator emits the keccak digest of the public values in place of
// a real proof. Only MockVerifier accepts its output.
type MockGenerator struct{}

func (MockGenerator) GenerateProof(_ context.Context, publicValues []byte) ([]byte, error) {
	return crypto.Keccak256(publicValues), nil
}

// MockVerifier accepts a proof iff it is the keccak digest of the public
// values, so a mock proof still binds to the exact claim it was made for.
type MockVerifier struct{}

func (MockVerifier) Verify(_ common.Hash, publicValues []byte, proof []byte) error {
	if !bytes.Equal(proof, crypto.Keccak256(publicValues)) {
		return errors.New("proof does not match public values digest")
	}
	return nil
}
