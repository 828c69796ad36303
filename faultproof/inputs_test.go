package faultproof

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEncodePublicInputs(t *testing.T) {
	encoded, err := EncodePublicInputs(
		common.HexToHash("0x1"),
		common.HexToHash("0x2"),
		common.HexToHash("0x3"),
		42,
		common.HexToHash("0x4"),
		common.HexToHash("0x5"),
		common.HexToAddress("0x6"),
	)
	require.NoError(t, err)
	// Seven static words.
	require.Len(t, encoded, 7*32)

	// Every field must shift the encoding.
	other, err := EncodePublicInputs(
		common.HexToHash("0x1"),
		common.HexToHash("0x2"),
		common.HexToHash("0x3"),
		43,
		common.HexToHash("0x4"),
		common.HexToHash("0x5"),
		common.HexToAddress("0x6"),
	)
	require.NoError(t, err)
	require.NotEqual(t, encoded, other)

	other, err = EncodePublicInputs(
		common.HexToHash("0x1"),
		common.HexToHash("0x2"),
		common.HexToHash("0x3"),
		42,
		common.HexToHash("0x4"),
		common.HexToHash("0x5"),
		common.HexToAddress("0x7"),
	)
	require.NoError(t, err)
	require.NotEqual(t, encoded, other)
}
