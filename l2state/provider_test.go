package l2state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestComputeOutputRoot(t *testing.T) {
	stateRoot := common.HexToHash("0x1")
	storageRoot := common.HexToHash("0x2")
	blockHash := common.HexToHash("0x3")

	var preimage []byte
	preimage = append(preimage, make([]byte, 32)...)
	preimage = append(preimage, stateRoot.Bytes()...)
	preimage = append(preimage, storageRoot.Bytes()...)
	preimage = append(preimage, blockHash.Bytes()...)
	require.Equal(t, crypto.Keccak256Hash(preimage), ComputeOutputRoot(stateRoot, storageRoot, blockHash))

	// Every component must shift the commitment.
	base := ComputeOutputRoot(stateRoot, storageRoot, blockHash)
	require.NotEqual(t, base, ComputeOutputRoot(common.HexToHash("0x9"), storageRoot, blockHash))
	require.NotEqual(t, base, ComputeOutputRoot(stateRoot, common.HexToHash("0x9"), blockHash))
	require.NotEqual(t, base, ComputeOutputRoot(stateRoot, storageRoot, common.HexToHash("0x9")))
}
