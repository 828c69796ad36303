package faultproof

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xFacet/facet-op-succinct/util/timeref"
)

// WildcardProposer is the reserved allow-list identity whose entry acts as
// the global permissionless flag.
var WildcardProposer = common.Address{}

// eligibilityGate decides who may submit proposals. An identity is eligible
// if it is allow-listed, if the wildcard entry is set, or if no submission
// at all has happened for longer than the fallback timeout. The fallback
// clause keeps the system live when the allow-listed set goes silent.
//
// Not safe for concurrent use; guarded by the engine lock.
type eligibilityGate struct {
	allowList       map[common.Address]bool
	lastSubmission  timeref.Timestamp
	fallbackTimeout uint64
}

func newEligibilityGate(fallbackTimeout uint64, now timeref.Timestamp) *eligibilityGate {
	return &eligibilityGate{
		allowList:       make(map[common.Address]bool),
		lastSubmission:  now,
		fallbackTimeout: fallbackTimeout,
	}
}

func (g *eligibilityGate) isEligible(proposer common.Address, now timeref.Timestamp) bool {
	if g.allowList[proposer] || g.allowList[WildcardProposer] {
		return true
	}
	return uint64(now-g.lastSubmission) > g.fallbackTimeout
}

// recordSubmission resets the fallback timer. Called on every successful
// submission, including fallback-eligible ones.
func (g *eligibilityGate) recordSubmission(now timeref.Timestamp) {
	g.lastSubmission = now
}

func (g *eligibilityGate) setAllowed(proposer common.Address, allowed bool) {
	if allowed {
		g.allowList[proposer] = true
	} else {
		delete(g.allowList, proposer)
	}
}

func (g *eligibilityGate) allowed(proposer common.Address) bool {
	return g.allowList[proposer]
}
