package faultproof

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Params fixes the economics and proof configuration of a dispute game
// instance. All fields are immutable after construction.
type Params struct {
	// MaxChallengeDuration is the challenge window in seconds, starting at
	// submission.
	MaxChallengeDuration uint64
	// MaxProveDuration is the prove window in seconds, restarting at
	// challenge time.
	MaxProveDuration uint64
	// ProposerBond must be attached exactly to every submission.
	ProposerBond *big.Int
	// ChallengerBond must be attached exactly to every challenge.
	ChallengerBond *big.Int
	// FallbackTimeout is the quiet period in seconds after which submission
	// becomes permissionless.
	FallbackTimeout uint64

	// RollupConfigHash commits to the rollup configuration the proofs are
	// generated against.
	RollupConfigHash common.Hash
	// AggregationVKey is the verification key for aggregation proofs.
	AggregationVKey common.Hash
	// RangeVkeyCommitment commits to the range program verification key.
	RangeVkeyCommitment common.Hash
	// L1HeadOffset is how many blocks in the past the L1 head reference is
	// captured, resisting last-moment reorg games.
	L1HeadOffset uint64

	// GenesisRoot and GenesisL2BlockNumber seed the pre-resolved proposal at
	// index 0.
	GenesisRoot          common.Hash
	GenesisL2BlockNumber uint64

	// Owner may mutate the proposer allow-list.
	Owner common.Address
}

func (p *Params) Validate() error {
	if p.MaxChallengeDuration == 0 {
		return errors.New("max challenge duration must be positive")
	}
	if p.MaxProveDuration == 0 {
		return errors.New("max prove duration must be positive")
	}
	if p.ProposerBond == nil || p.ProposerBond.Sign() <= 0 {
		return errors.New("proposer bond must be positive")
	}
	if p.ChallengerBond == nil || p.ChallengerBond.Sign() <= 0 {
		return errors.New("challenger bond must be positive")
	}
	if p.FallbackTimeout == 0 {
		return errors.New("fallback timeout must be positive")
	}
	return nil
}
