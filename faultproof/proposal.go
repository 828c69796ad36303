package faultproof

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xFacet/facet-op-succinct/util/timeref"
)

// ProposalStatus is the lifecycle phase of a proposal. It only ever advances:
//
//	Unchallenged -> Challenged           -> ChallengedProven -> Resolved
//	Unchallenged -> UnchallengedProven   -> Resolved
//	Unchallenged -> Resolved (challenge window expired)
//	Challenged   -> Resolved (prove window expired)
type ProposalStatus uint8

const (
	StatusUnchallenged ProposalStatus = iota
	StatusChallenged
	StatusUnchallengedProven
	StatusChallengedProven
	StatusResolved
)

func (s ProposalStatus) String() string {
	switch s {
	case StatusUnchallenged:
		return "unchallenged"
	case StatusChallenged:
		return "challenged"
	case StatusUnchallengedProven:
		return "unchallenged-proven"
	case StatusChallengedProven:
		return "challenged-proven"
	case StatusResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// ResolutionStatus is the outcome of a proposal. Set exactly once, at
// resolution.
type ResolutionStatus uint8

const (
	ResolutionInProgress ResolutionStatus = iota
	ResolutionDefenderWins
	ResolutionChallengerWins
)

func (r ResolutionStatus) String() string {
	switch r {
	case ResolutionInProgress:
		return "in-progress"
	case ResolutionDefenderWins:
		return "defender-wins"
	case ResolutionChallengerWins:
		return "challenger-wins"
	default:
		return "unknown"
	}
}

// Proposal is a bonded claim about the L2 state at a given block height. Its
// index in the store is its identity; index 0 is the synthetic genesis
// proposal, pre-resolved in favor of the defender.
type Proposal struct {
	// RootClaim is the claimed L2 output root.
	RootClaim common.Hash
	// L1Head is the L1 block hash captured at submission time, a fixed
	// number of blocks in the past, binding proofs to a specific L1 context.
	L1Head common.Hash
	// L2BlockNumber is the L2 height the claim is about. Strictly greater
	// than the anchor's height at submission time.
	L2BlockNumber uint64
	// Deadline is when the current phase expires: submission + challenge
	// window while unchallenged, challenge + prove window once challenged.
	Deadline timeref.Timestamp
	// ResolvedAt is zero until the proposal resolves.
	ResolvedAt timeref.Timestamp

	Proposer   common.Address
	Challenger common.Address // zero until challenged
	Prover     common.Address // zero until proven

	// ParentIndex is the anchor proposal at submission time. Lineage is
	// informational; it is not validated at resolution.
	ParentIndex uint64

	Status     ProposalStatus
	Resolution ResolutionStatus
}

// Challenged reports whether a challenger bond was ever posted against this
// proposal, regardless of later phases.
func (p *Proposal) Challenged() bool {
	return p.Challenger != (common.Address{})
}

// Proven reports whether a validity proof was accepted for this proposal.
func (p *Proposal) Proven() bool {
	return p.Prover != (common.Address{})
}
