package faultproof

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEligibilityAllowList(t *testing.T) {
	gate := newEligibilityGate(1000, 0)
	addr := common.HexToAddress("0x1")

	require.False(t, gate.isEligible(addr, 0))
	gate.setAllowed(addr, true)
	require.True(t, gate.isEligible(addr, 0))
	require.True(t, gate.allowed(addr))
	gate.setAllowed(addr, false)
	require.False(t, gate.isEligible(addr, 0))
}

func TestEligibilityWildcard(t *testing.T) {
	gate := newEligibilityGate(1000, 0)
	addr := common.HexToAddress("0x1")

	gate.setAllowed(WildcardProposer, true)
	require.True(t, gate.isEligible(addr, 0))
	gate.setAllowed(WildcardProposer, false)
	require.False(t, gate.isEligible(addr, 0))
}

func TestEligibilityFallback(t *testing.T) {
	gate := newEligibilityGate(1000, 100)
	addr := common.HexToAddress("0x1")

	require.False(t, gate.isEligible(addr, 1100))
	require.True(t, gate.isEligible(addr, 1101))

	gate.recordSubmission(1101)
	require.False(t, gate.isEligible(addr, 1102))
	require.True(t, gate.isEligible(addr, 2102))
}
