// Package l2state computes and serves L2 output root commitments, the
// ground truth the offchain agents compare proposals against.
package l2state

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// MessagePasserAddress is the L2ToL1MessagePasser predeploy whose storage
// root is committed inside the output root.
var MessagePasserAddress = common.HexToAddress("0x4200000000000000000000000000000000000016")

// ErrFutureBlock distinguishes "the chain has not produced this block yet"
// from transport failure. A claim at a future height is challengeable.
var ErrFutureBlock = errors.New("l2 block beyond chain tip")

// Provider yields information about the canonical L2 chain.
type Provider interface {
	// OutputRootAt computes the output root at an L2 height. Returns an
	// error wrapping ErrFutureBlock when the height is beyond the tip.
	OutputRootAt(ctx context.Context, l2BlockNumber uint64) (common.Hash, error)
	// LatestHeight returns the current chain tip.
	LatestHeight(ctx context.Context) (uint64, error)
	// FinalizedHeight returns the latest finalized L2 height.
	FinalizedHeight(ctx context.Context) (uint64, error)
}

// ComputeOutputRoot hashes the version-0 output root preimage:
// keccak256(version || stateRoot || messagePasserStorageRoot || blockHash).
func ComputeOutputRoot(stateRoot, messagePasserStorageRoot, blockHash common.Hash) common.Hash {
	var version [32]byte
	return crypto.Keccak256Hash(version[:], stateRoot[:], messagePasserStorageRoot[:], blockHash[:])
}
