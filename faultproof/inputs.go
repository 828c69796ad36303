package faultproof

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Verifier is the external proof verification capability. A rejection is any
// non-nil error; the engine surfaces it wrapped in ErrProofRejected.
type Verifier interface {
	Verify(vkey common.Hash, publicValues []byte, proof []byte) error
}

// L1HeadSource provides the L1 block hash offset blocks behind the current
// head. Captured at submission time to bind proofs to an L1 context that can
// no longer be manipulated. Implementations may block on a backend lookup;
// the engine calls ReferenceAt outside its lock.
type L1HeadSource interface {
	ReferenceAt(offset uint64) common.Hash
}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// The verifier's public input tuple. The parent root is the claim at the
// proposal's ParentIndex, not necessarily the current anchor.
var publicInputArguments = abi.Arguments{
	{Name: "l1Head", Type: mustNewType("bytes32")},
	{Name: "parentRoot", Type: mustNewType("bytes32")},
	{Name: "claimRoot", Type: mustNewType("bytes32")},
	{Name: "claimBlockNum", Type: mustNewType("uint64")},
	{Name: "rollupConfigHash", Type: mustNewType("bytes32")},
	{Name: "rangeVkeyCommitment", Type: mustNewType("bytes32")},
	{Name: "prover", Type: mustNewType("address")},
}

// EncodePublicInputs ABI-encodes the public input tuple the aggregation
// proof commits to.
func EncodePublicInputs(
	l1Head common.Hash,
	parentRoot common.Hash,
	claimRoot common.Hash,
	claimBlockNum uint64,
	rollupConfigHash common.Hash,
	rangeVkeyCommitment common.Hash,
	prover common.Address,
) ([]byte, error) {
	return publicInputArguments.Pack(
		[32]byte(l1Head),
		[32]byte(parentRoot),
		[32]byte(claimRoot),
		claimBlockNum,
		[32]byte(rollupConfigHash),
		[32]byte(rangeVkeyCommitment),
		prover,
	)
}
