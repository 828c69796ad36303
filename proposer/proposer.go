// Package proposer runs the honest proposer agent: it submits output root
// claims on a fixed block cadence, defends them with validity proofs when
// challenged, resolves expired games and sweeps won bonds.
package proposer

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/pkg/errors"

	"github.com/0xFacet/facet-op-succinct/faultproof"
	"github.com/0xFacet/facet-op-succinct/l2state"
	"github.com/0xFacet/facet-op-succinct/proofs"
	"github.com/0xFacet/facet-op-succinct/util/stopwaiter"
)

var (
	proposalsCreatedCounter  = metrics.NewRegisteredCounter("faultproof/proposer/proposals/created", nil)
	proposalsDefendedCounter = metrics.NewRegisteredCounter("faultproof/proposer/proposals/defended", nil)
	proposalsResolvedCounter = metrics.NewRegisteredCounter("faultproof/proposer/proposals/resolved", nil)
	bondsClaimedCounter      = metrics.NewRegisteredCounter("faultproof/proposer/bonds/claimed", nil)
	creationErrorCounter     = metrics.NewRegisteredCounter("faultproof/proposer/errors/creation", nil)
	defenseErrorCounter      = metrics.NewRegisteredCounter("faultproof/proposer/errors/defense", nil)
	resolutionErrorCounter   = metrics.NewRegisteredCounter("faultproof/proposer/errors/resolution", nil)
	claimErrorCounter        = metrics.NewRegisteredCounter("faultproof/proposer/errors/claim", nil)
	anchorHeightGauge        = metrics.NewRegisteredGauge("faultproof/proposer/anchor/height", nil)
	latestHeightGauge        = metrics.NewRegisteredGauge("faultproof/proposer/latest/height", nil)
	finalizedHeightGauge     = metrics.NewRegisteredGauge("faultproof/proposer/finalized/height", nil)
)

type Proposer struct {
	stopwaiter.StopWaiter

	config    Config
	game      *faultproof.Game
	provider  l2state.Provider
	generator proofs.Generator
	address   common.Address
	bond      *big.Int
}

func NewProposer(config Config, game *faultproof.Game, provider l2state.Provider, generator proofs.Generator, address common.Address) *Proposer {
	return &Proposer{
		config:    config,
		game:      game,
		provider:  provider,
		generator: generator,
		address:   address,
		bond:      game.Params().ProposerBond,
	}
}

func (p *Proposer) Start(ctxIn context.Context) {
	p.StopWaiter.Start(ctxIn, p)
	p.CallIteratively(func(ctx context.Context) time.Duration {
		if _, err := p.handleProposalCreation(ctx); err != nil {
			log.Warn("error creating proposal", "err", err)
			creationErrorCounter.Inc(1)
		}
		if err := p.handleProposalDefense(ctx); err != nil {
			log.Warn("error defending proposals", "err", err)
			defenseErrorCounter.Inc(1)
		}
		if p.config.EnableResolution {
			if err := p.handleProposalResolution(ctx); err != nil {
				log.Warn("error resolving proposals", "err", err)
				resolutionErrorCounter.Inc(1)
			}
		}
		if err := p.handleBondClaiming(ctx); err != nil {
			log.Warn("error claiming bonds", "err", err)
			claimErrorCounter.Inc(1)
		}
		return p.config.PollInterval
	})
	p.CallIteratively(func(ctx context.Context) time.Duration {
		p.updateMetrics(ctx)
		return p.config.MetricsInterval
	})
}

// latestValidProposal scans from the newest proposal toward genesis for
// the highest claim matched by the state oracle, skipping claims the
// chain has not reached yet.
func (p *Proposer) latestValidProposal(ctx context.Context) (uint64, error) {
	count := p.game.ProposalCount()
	for id := count - 1; ; id-- {
		prop, err := p.game.GetProposal(id)
		if err != nil {
			return 0, err
		}
		root, err := p.provider.OutputRootAt(ctx, prop.L2BlockNumber)
		if err != nil {
			if errors.Is(err, l2state.ErrFutureBlock) {
				if id == 0 {
					break
				}
				continue
			}
			return 0, err
		}
		if root == prop.RootClaim {
			return prop.L2BlockNumber, nil
		}
		if id == 0 {
			break
		}
	}
	return 0, errors.New("no proposal matches the canonical chain")
}

// handleProposalCreation submits one proposal when the chain has
// finalized past its height. Reports whether a proposal was submitted.
func (p *Proposer) handleProposalCreation(ctx context.Context) (bool, error) {
	refHeight, err := p.latestValidProposal(ctx)
	if err != nil {
		return false, err
	}
	next := refHeight + p.config.ProposalIntervalBlocks
	finalized, err := p.provider.FinalizedHeight(ctx)
	if err != nil {
		return false, errors.Wrap(err, "getting finalized height")
	}
	if finalized < next {
		log.Debug("finalized head below next proposal height", "finalized", finalized, "next", next)
		return false, nil
	}
	root, err := p.provider.OutputRootAt(ctx, next)
	if err != nil {
		return false, err
	}
	id, err := p.game.SubmitProposal(ctx, p.address, root, next, p.bond)
	if err != nil {
		if errors.Is(err, faultproof.ErrHeightNotAdvancing) {
			// Another proposer advanced the anchor first.
			return false, nil
		}
		return false, err
	}
	proposalsCreatedCounter.Inc(1)
	log.Info("submitted proposal", "id", id, "l2BlockNumber", next, "rootClaim", root)
	if p.config.FastFinality {
		if err := p.defendProposal(ctx, id); err != nil {
			return true, errors.Wrap(err, "proving own proposal")
		}
	}
	return true, nil
}

func (p *Proposer) defendProposal(ctx context.Context, id uint64) error {
	publicValues, err := p.game.PublicInputs(id, p.address)
	if err != nil {
		return err
	}
	proof, err := p.generator.GenerateProof(ctx, publicValues)
	if err != nil {
		return errors.Wrap(err, "generating proof")
	}
	if err := p.game.ProveProposal(ctx, id, p.address, proof); err != nil {
		return err
	}
	proposalsDefendedCounter.Inc(1)
	log.Info("defended proposal", "id", id)
	return nil
}

// handleProposalDefense proves any challenged proposal whose claim the
// state oracle confirms, not only the agent's own.
func (p *Proposer) handleProposalDefense(ctx context.Context) error {
	start := p.game.AnchorID() + 1
	count := p.game.ProposalCount()
	for id := start; id < count && id-start < p.config.MaxProposalsToCheck; id++ {
		needs, err := p.game.NeedsDefense(id)
		if err != nil {
			return err
		}
		if !needs {
			continue
		}
		prop, err := p.game.GetProposal(id)
		if err != nil {
			return err
		}
		root, err := p.provider.OutputRootAt(ctx, prop.L2BlockNumber)
		if err != nil {
			log.Warn("error checking challenged proposal", "id", id, "err", err)
			continue
		}
		if root != prop.RootClaim {
			// Not a claim we can honestly prove.
			continue
		}
		if err := p.defendProposal(ctx, id); err != nil {
			if errors.Is(err, faultproof.ErrGameOver) {
				continue
			}
			log.Warn("error proving proposal", "id", id, "err", err)
			defenseErrorCounter.Inc(1)
		}
	}
	return nil
}

func (p *Proposer) handleProposalResolution(ctx context.Context) error {
	start := p.game.AnchorID() + 1
	count := p.game.ProposalCount()
	for id := start; id < count && id-start < p.config.MaxProposalsToCheck; id++ {
		resolvable, err := p.game.IsResolvable(id)
		if err != nil {
			return err
		}
		if !resolvable {
			continue
		}
		if err := p.game.ResolveProposal(ctx, id); err != nil {
			if errors.Is(err, faultproof.ErrAlreadyResolved) {
				continue
			}
			log.Warn("error resolving proposal", "id", id, "err", err)
			resolutionErrorCounter.Inc(1)
			continue
		}
		proposalsResolvedCounter.Inc(1)
		log.Info("resolved proposal", "id", id)
	}
	return nil
}

func (p *Proposer) handleBondClaiming(ctx context.Context) error {
	if p.game.Credit(p.address).Sign() == 0 {
		return nil
	}
	amount, err := p.game.ClaimCredit(ctx, p.address)
	if err != nil {
		if errors.Is(err, faultproof.ErrNoCredit) {
			return nil
		}
		return err
	}
	bondsClaimedCounter.Inc(1)
	log.Info("claimed bond credit", "amount", amount)
	return nil
}

func (p *Proposer) updateMetrics(ctx context.Context) {
	anchor := p.game.AnchorProposal()
	anchorHeightGauge.Update(int64(anchor.L2BlockNumber))
	if ids := p.game.LatestProposals(1); len(ids) > 0 {
		if prop, err := p.game.GetProposal(ids[0]); err == nil {
			latestHeightGauge.Update(int64(prop.L2BlockNumber))
		}
	}
	finalized, err := p.provider.FinalizedHeight(ctx)
	if err != nil {
		log.Debug("error getting finalized height for metrics", "err", err)
		return
	}
	finalizedHeightGauge.Update(int64(finalized))
}
