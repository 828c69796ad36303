// Package faultproof implements the economic dispute game that settles which
// claim about the L2 state is canonical. Proposers post bonded output-root
// claims; challengers post counter-bonds; either side may land a validity
// proof; unresolved games fall back to deadline rules. A single anchor
// tracks the latest claim accepted as canonical, and an escrow ledger tracks
// bond value owed to participants.
package faultproof

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/0xFacet/facet-op-succinct/containers/events"
	"github.com/0xFacet/facet-op-succinct/util/timeref"
)

// Game is the dispute engine for one rollup. Every entry point either fully
// commits or fails with no state change.
//
// The engine lock serializes state transitions. The escrow ledger and the
// external capabilities (verifier, transfer) are never called while holding
// write access in a way that could re-enter the engine: proof verification
// runs between a read snapshot and a re-checked commit, and credit claims
// bypass the engine lock entirely (see escrowLedger).
type Game struct {
	mu sync.RWMutex

	params   Params
	clock    timeref.Reference
	l1       L1HeadSource
	verifier Verifier
	transfer TransferFunc

	store    proposalStore
	escrow   *escrowLedger
	gate     *eligibilityGate
	anchorID uint64

	feed *events.Producer[Event]
}

// NewGame constructs an engine seeded with the pre-resolved genesis proposal
// at index 0.
func NewGame(params Params, clock timeref.Reference, l1 L1HeadSource, verifier Verifier, transfer TransferFunc) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid game params")
	}
	if clock == nil || l1 == nil || verifier == nil || transfer == nil {
		return nil, errors.New("nil game capability")
	}
	params.ProposerBond = new(big.Int).Set(params.ProposerBond)
	params.ChallengerBond = new(big.Int).Set(params.ChallengerBond)

	now := clock.Now()
	g := &Game{
		params:   params,
		clock:    clock,
		l1:       l1,
		verifier: verifier,
		transfer: transfer,
		escrow:   newEscrowLedger(),
		gate:     newEligibilityGate(params.FallbackTimeout, now),
		feed:     events.NewProducer[Event](),
	}
	g.store.append(&Proposal{
		RootClaim:     params.GenesisRoot,
		L2BlockNumber: params.GenesisL2BlockNumber,
		ResolvedAt:    now,
		Status:        StatusResolved,
		Resolution:    ResolutionDefenderWins,
	})
	return g, nil
}

// Subscribe returns a subscription to the engine's event feed.
func (g *Game) Subscribe() *events.Subscription[Event] {
	return g.feed.Subscribe()
}

// Params returns a copy of the engine's immutable parameters.
func (g *Game) Params() Params {
	p := g.params
	p.ProposerBond = new(big.Int).Set(g.params.ProposerBond)
	p.ChallengerBond = new(big.Int).Set(g.params.ChallengerBond)
	return p
}

func (g *Game) broadcastAll(ctx context.Context, evs *[]Event) {
	for _, ev := range *evs {
		g.feed.Broadcast(ctx, ev)
	}
}

// gameOver is the predicate gating all transitions: a proposal can no longer
// be disputed once its deadline has passed or a proof has been recorded.
func gameOver(p *Proposal, now timeref.Timestamp) bool {
	return now > p.Deadline || p.Proven()
}

// SubmitProposal appends a new bonded claim. The attached bond must equal
// the proposer bond exactly, the claim height must exceed the anchor's, and
// the eligibility gate must admit the proposer.
func (g *Game) SubmitProposal(ctx context.Context, proposer common.Address, rootClaim common.Hash, l2BlockNumber uint64, bond *big.Int) (uint64, error) {
	// The reference lookup may block on a backend fetch, so it runs before
	// the engine lock. Params are immutable, no lock needed.
	l1Head := g.l1.ReferenceAt(g.params.L1HeadOffset)

	var evs []Event
	defer g.broadcastAll(ctx, &evs)
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if !g.gate.isEligible(proposer, now) {
		return 0, errors.Wrapf(ErrNotEligible, "proposer %v", proposer)
	}
	if bond == nil || bond.Cmp(g.params.ProposerBond) != 0 {
		return 0, errors.Wrapf(ErrIncorrectBondAmount, "want %v", g.params.ProposerBond)
	}
	anchor := g.anchorLocked()
	if l2BlockNumber <= anchor.L2BlockNumber {
		return 0, errors.Wrapf(ErrHeightNotAdvancing, "claim height %d, anchor height %d", l2BlockNumber, anchor.L2BlockNumber)
	}

	p := &Proposal{
		RootClaim:     rootClaim,
		L1Head:        l1Head,
		L2BlockNumber: l2BlockNumber,
		Deadline:      now + timeref.Timestamp(g.params.MaxChallengeDuration),
		Proposer:      proposer,
		ParentIndex:   g.anchorID,
	}
	id := g.store.append(p)
	g.gate.recordSubmission(now)

	log.Debug("proposal submitted", "id", id, "proposer", proposer, "l2BlockNumber", l2BlockNumber, "rootClaim", rootClaim)
	evs = append(evs, ProposalSubmittedEvent{ID: id, Proposer: proposer, RootClaim: rootClaim, L2BlockNumber: l2BlockNumber})
	return id, nil
}

// ChallengeProposal posts a counter-bond against an unchallenged proposal
// and restarts its deadline with the prove window.
func (g *Game) ChallengeProposal(ctx context.Context, id uint64, challenger common.Address, bond *big.Int) error {
	var evs []Event
	defer g.broadcastAll(ctx, &evs)
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.store.get(id)
	if !ok {
		return errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	now := g.clock.Now()
	if gameOver(p, now) {
		return errors.Wrapf(ErrGameOver, "proposal %d", id)
	}
	if p.Status != StatusUnchallenged {
		return errors.Wrapf(ErrAlreadyChallenged, "proposal %d status %v", id, p.Status)
	}
	if bond == nil || bond.Cmp(g.params.ChallengerBond) != 0 {
		return errors.Wrapf(ErrIncorrectBondAmount, "want %v", g.params.ChallengerBond)
	}

	p.Challenger = challenger
	p.Status = StatusChallenged
	p.Deadline = now + timeref.Timestamp(g.params.MaxProveDuration)

	log.Debug("proposal challenged", "id", id, "challenger", challenger)
	evs = append(evs, ProposalChallengedEvent{ID: id, Challenger: challenger})
	return nil
}

// ProveProposal verifies a validity proof for the proposal and, on success,
// records the prover and closes the challenge window. Verification runs
// outside the engine lock; the not-over precondition is re-checked when the
// verifier returns, so a challenge landing mid-verification yields
// ChallengedProven rather than a lost update.
func (g *Game) ProveProposal(ctx context.Context, id uint64, prover common.Address, proof []byte) error {
	g.mu.RLock()
	p, ok := g.store.get(id)
	if !ok {
		g.mu.RUnlock()
		return errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	if gameOver(p, g.clock.Now()) {
		g.mu.RUnlock()
		return errors.Wrapf(ErrGameOver, "proposal %d", id)
	}
	parent, ok := g.store.get(p.ParentIndex)
	if !ok {
		g.mu.RUnlock()
		return errors.Wrapf(ErrUnknownProposal, "parent %d of proposal %d", p.ParentIndex, id)
	}
	publicValues, err := EncodePublicInputs(
		p.L1Head,
		parent.RootClaim,
		p.RootClaim,
		p.L2BlockNumber,
		g.params.RollupConfigHash,
		g.params.RangeVkeyCommitment,
		prover,
	)
	g.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "encoding public inputs")
	}

	if err := g.verifier.Verify(g.params.AggregationVKey, publicValues, proof); err != nil {
		return errors.Wrapf(ErrProofRejected, "proposal %d: %v", id, err)
	}

	var evs []Event
	defer g.broadcastAll(ctx, &evs)
	g.mu.Lock()
	defer g.mu.Unlock()

	p, _ = g.store.get(id)
	if gameOver(p, g.clock.Now()) {
		return errors.Wrapf(ErrGameOver, "proposal %d", id)
	}
	switch p.Status {
	case StatusUnchallenged:
		p.Status = StatusUnchallengedProven
	case StatusChallenged:
		p.Status = StatusChallengedProven
	default:
		// Proven or resolved statuses imply the game is over, caught above.
		return errors.Wrapf(ErrGameOver, "proposal %d status %v", id, p.Status)
	}
	p.Prover = prover

	log.Debug("proposal proven", "id", id, "prover", prover, "status", p.Status)
	evs = append(evs, ProposalProvenEvent{ID: id, Prover: prover})
	return nil
}

// ResolveProposal fixes the outcome of a proposal whose game is over,
// credits bonds to the winning side, and considers promoting the proposal
// to anchor. Callable by anyone, exactly once per proposal.
func (g *Game) ResolveProposal(ctx context.Context, id uint64) error {
	var evs []Event
	defer g.broadcastAll(ctx, &evs)
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.store.get(id)
	if !ok {
		return errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	if p.Resolution != ResolutionInProgress {
		return errors.Wrapf(ErrAlreadyResolved, "proposal %d", id)
	}
	now := g.clock.Now()
	if !gameOver(p, now) {
		return errors.Wrapf(ErrGameNotOver, "proposal %d, deadline %d, now %d", id, p.Deadline, now)
	}

	var resolution ResolutionStatus
	switch p.Status {
	case StatusChallenged:
		// Prove window expired without a proof: challenger takes both bonds.
		resolution = ResolutionChallengerWins
		g.escrow.credit(p.Challenger, new(big.Int).Add(g.params.ProposerBond, g.params.ChallengerBond))
	case StatusUnchallenged, StatusUnchallengedProven:
		resolution = ResolutionDefenderWins
		g.escrow.credit(p.Proposer, g.params.ProposerBond)
	case StatusChallengedProven:
		// A third-party rescuer earns the challenger's forfeited bond; the
		// proposer is made whole either way.
		resolution = ResolutionDefenderWins
		if p.Prover == p.Proposer {
			g.escrow.credit(p.Proposer, new(big.Int).Add(g.params.ProposerBond, g.params.ChallengerBond))
		} else {
			g.escrow.credit(p.Prover, g.params.ChallengerBond)
			g.escrow.credit(p.Proposer, g.params.ProposerBond)
		}
	default:
		return errors.Wrapf(ErrInvalidPhase, "proposal %d status %v", id, p.Status)
	}

	p.Status = StatusResolved
	p.Resolution = resolution
	p.ResolvedAt = now
	evs = append(evs, ProposalResolvedEvent{ID: id, Resolution: resolution})
	log.Debug("proposal resolved", "id", id, "resolution", resolution)

	if shouldPromote(resolution, p.L2BlockNumber, g.anchorLocked().L2BlockNumber) {
		g.anchorID = id
		evs = append(evs, AnchorUpdatedEvent{ID: id, RootClaim: p.RootClaim, L2BlockNumber: p.L2BlockNumber})
		log.Info("anchor updated", "id", id, "l2BlockNumber", p.L2BlockNumber, "rootClaim", p.RootClaim)
	}
	return nil
}

// ClaimCredit pays out the recipient's accumulated credit through the value
// transfer primitive. A failed transfer restores the balance. Does not take
// the engine lock, so claims triggered from within a transfer observe the
// zeroed balance and fail with ErrNoCredit.
func (g *Game) ClaimCredit(ctx context.Context, recipient common.Address) (*big.Int, error) {
	amount, err := g.escrow.withdraw(recipient, g.transfer)
	if err != nil {
		return nil, err
	}
	g.feed.Broadcast(ctx, CreditClaimedEvent{Recipient: recipient, Amount: new(big.Int).Set(amount)})
	return amount, nil
}

// SetProposer updates the allow-list. Owner only. Setting the wildcard
// identity toggles permissionless submission.
func (g *Game) SetProposer(ctx context.Context, caller, proposer common.Address, allowed bool) error {
	var evs []Event
	defer g.broadcastAll(ctx, &evs)
	g.mu.Lock()
	defer g.mu.Unlock()

	if caller != g.params.Owner {
		return errors.Wrapf(ErrBadAuth, "caller %v", caller)
	}
	g.gate.setAllowed(proposer, allowed)
	evs = append(evs, ProposerPermissionEvent{Proposer: proposer, Allowed: allowed})
	return nil
}

// SetPermissionless toggles the wildcard allow-list entry. Owner only.
func (g *Game) SetPermissionless(ctx context.Context, caller common.Address, allowed bool) error {
	return g.SetProposer(ctx, caller, WildcardProposer, allowed)
}

func (g *Game) anchorLocked() *Proposal {
	p, _ := g.store.get(g.anchorID)
	return p
}

// GetProposal returns a copy of the proposal at id.
func (g *Game) GetProposal(id uint64) (Proposal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.store.get(id)
	if !ok {
		return Proposal{}, errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	return *p, nil
}

// GetProposals returns copies of the proposals at the given indices.
func (g *Game) GetProposals(ids []uint64) ([]Proposal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Proposal, 0, len(ids))
	for _, id := range ids {
		p, ok := g.store.get(id)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownProposal, "id %d", id)
		}
		out = append(out, *p)
	}
	return out, nil
}

// PublicInputs encodes the public input tuple a proof of the given
// proposal must commit to, with the prospective prover bound in.
func (g *Game) PublicInputs(id uint64, prover common.Address) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.store.get(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	parent, ok := g.store.get(p.ParentIndex)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProposal, "parent %d of proposal %d", p.ParentIndex, id)
	}
	return EncodePublicInputs(
		p.L1Head,
		parent.RootClaim,
		p.RootClaim,
		p.L2BlockNumber,
		g.params.RollupConfigHash,
		g.params.RangeVkeyCommitment,
		prover,
	)
}

// ProposalCount returns the store size, genesis included.
func (g *Game) ProposalCount() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.len()
}

// LatestProposals returns up to n indices in reverse chronological order.
func (g *Game) LatestProposals(n uint64) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.latest(n)
}

// SearchBackward scans from start toward genesis and returns up to limit
// indices of unresolved proposals with height at most maxHeight (0 means
// unbounded).
func (g *Game) SearchBackward(start uint64, limit int, maxHeight uint64) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.searchBackward(start, limit, func(_ uint64, p *Proposal) bool {
		return maxHeight == 0 || p.L2BlockNumber <= maxHeight
	})
}

// AnchorID returns the index of the current anchor proposal.
func (g *Game) AnchorID() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.anchorID
}

// AnchorProposal returns a copy of the current anchor.
func (g *Game) AnchorProposal() Proposal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return *g.anchorLocked()
}

// AnchorRoot returns the canonical output root and its height.
func (g *Game) AnchorRoot() (common.Hash, uint64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	anchor := g.anchorLocked()
	return anchor.RootClaim, anchor.L2BlockNumber
}

// GameOver reports whether the proposal can no longer be disputed.
func (g *Game) GameOver(id uint64) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.store.get(id)
	if !ok {
		return false, errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	return gameOver(p, g.clock.Now()), nil
}

// IsResolvable reports whether ResolveProposal would be admissible.
func (g *Game) IsResolvable(id uint64) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.store.get(id)
	if !ok {
		return false, errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	return p.Resolution == ResolutionInProgress && gameOver(p, g.clock.Now()), nil
}

// NeedsDefense reports whether the proposal is challenged, unproven, and
// still within its prove window.
func (g *Game) NeedsDefense(id uint64) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.store.get(id)
	if !ok {
		return false, errors.Wrapf(ErrUnknownProposal, "id %d", id)
	}
	return !gameOver(p, g.clock.Now()) && p.Status == StatusChallenged && !p.Proven(), nil
}

// Credit returns the recipient's claimable balance.
func (g *Game) Credit(recipient common.Address) *big.Int {
	return g.escrow.balance(recipient)
}

// AllowedProposer reports whether the identity could submit right now,
// including via the fallback timeout.
func (g *Game) AllowedProposer(proposer common.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gate.isEligible(proposer, g.clock.Now())
}
