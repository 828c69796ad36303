package faultproof

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event is a notification broadcast by the engine on every committed state
// transition.
type Event interface {
	Name() string
}

type ProposalSubmittedEvent struct {
	ID            uint64
	Proposer      common.Address
	RootClaim     common.Hash
	L2BlockNumber uint64
}

func (ProposalSubmittedEvent) Name() string { return "ProposalSubmitted" }

type ProposalChallengedEvent struct {
	ID         uint64
	Challenger common.Address
}

func (ProposalChallengedEvent) Name() string { return "ProposalChallenged" }

type ProposalProvenEvent struct {
	ID     uint64
	Prover common.Address
}

func (ProposalProvenEvent) Name() string { return "ProposalProven" }

type ProposalResolvedEvent struct {
	ID         uint64
	Resolution ResolutionStatus
}

func (ProposalResolvedEvent) Name() string { return "ProposalResolved" }

type AnchorUpdatedEvent struct {
	ID            uint64
	RootClaim     common.Hash
	L2BlockNumber uint64
}

func (AnchorUpdatedEvent) Name() string { return "AnchorUpdated" }

type CreditClaimedEvent struct {
	Recipient common.Address
	Amount    *big.Int
}

func (CreditClaimedEvent) Name() string { return "CreditClaimed" }

type ProposerPermissionEvent struct {
	Proposer common.Address
	Allowed  bool
}

func (ProposerPermissionEvent) Name() string { return "ProposerPermissionUpdated" }
