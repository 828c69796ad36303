// Package challenger runs the watchdog agent: it checks every proposal
// against the canonical L2 state, challenges claims the chain does not
// back, resolves its won challenges and sweeps the bonds.
package challenger

import (
	"context"
	"math/big"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/pkg/errors"

	"github.com/0xFacet/facet-op-succinct/faultproof"
	"github.com/0xFacet/facet-op-succinct/l2state"
	"github.com/0xFacet/facet-op-succinct/util/stopwaiter"
)

var (
	challengesIssuedCounter   = metrics.NewRegisteredCounter("faultproof/challenger/challenges/issued", nil)
	challengesResolvedCounter = metrics.NewRegisteredCounter("faultproof/challenger/challenges/resolved", nil)
	bondsClaimedCounter       = metrics.NewRegisteredCounter("faultproof/challenger/bonds/claimed", nil)
	challengeErrorCounter     = metrics.NewRegisteredCounter("faultproof/challenger/errors/challenge", nil)
	resolutionErrorCounter    = metrics.NewRegisteredCounter("faultproof/challenger/errors/resolution", nil)
	claimErrorCounter         = metrics.NewRegisteredCounter("faultproof/challenger/errors/claim", nil)
	anchorHeightGauge         = metrics.NewRegisteredGauge("faultproof/challenger/anchor/height", nil)
	openChallengesGauge       = metrics.NewRegisteredGauge("faultproof/challenger/challenges/open", nil)
)

type Challenger struct {
	stopwaiter.StopWaiter

	config   Config
	game     *faultproof.Game
	provider l2state.Provider
	address  common.Address
	bond     *big.Int
}

func NewChallenger(config Config, game *faultproof.Game, provider l2state.Provider, address common.Address) *Challenger {
	return &Challenger{
		config:   config,
		game:     game,
		provider: provider,
		address:  address,
		bond:     game.Params().ChallengerBond,
	}
}

func (c *Challenger) Start(ctxIn context.Context) {
	c.StopWaiter.Start(ctxIn, c)
	c.LaunchThread(c.eventLoop)
	c.CallIteratively(func(ctx context.Context) time.Duration {
		if err := c.handleChallenges(ctx); err != nil {
			log.Warn("error sweeping proposals", "err", err)
			challengeErrorCounter.Inc(1)
		}
		if c.config.EnableResolution {
			if err := c.handleResolution(ctx); err != nil {
				log.Warn("error resolving challenges", "err", err)
				resolutionErrorCounter.Inc(1)
			}
		}
		if err := c.handleBondClaiming(ctx); err != nil {
			log.Warn("error claiming bonds", "err", err)
			claimErrorCounter.Inc(1)
		}
		return c.config.PollInterval
	})
	c.CallIteratively(func(ctx context.Context) time.Duration {
		c.updateMetrics()
		return c.config.MetricsInterval
	})
}

// eventLoop reacts to submissions as they happen instead of waiting for
// the next sweep, shrinking the window a bad claim sits unchallenged.
func (c *Challenger) eventLoop(ctx context.Context) {
	sub := c.game.Subscribe()
	defer sub.Close()
	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			return
		}
		submitted, ok := ev.(faultproof.ProposalSubmittedEvent)
		if !ok {
			continue
		}
		if err := c.maybeChallenge(ctx, submitted.ID); err != nil {
			log.Warn("error checking new proposal", "id", submitted.ID, "err", err)
			challengeErrorCounter.Inc(1)
		}
	}
}

// maybeChallenge challenges the proposal when the state oracle disputes
// its claim. Claims beyond the chain tip are treated as invalid.
func (c *Challenger) maybeChallenge(ctx context.Context, id uint64) error {
	prop, err := c.game.GetProposal(id)
	if err != nil {
		return err
	}
	if prop.Status != faultproof.StatusUnchallenged || prop.Resolution != faultproof.ResolutionInProgress {
		return nil
	}
	var shouldChallenge bool
	root, err := c.provider.OutputRootAt(ctx, prop.L2BlockNumber)
	switch {
	case errors.Is(err, l2state.ErrFutureBlock):
		shouldChallenge = true
		log.Warn("proposal claims a block beyond the chain tip", "id", id, "l2BlockNumber", prop.L2BlockNumber)
	case err != nil:
		return err
	case root != prop.RootClaim:
		shouldChallenge = true
		log.Warn("proposal root mismatch", "id", id, "claimed", prop.RootClaim, "computed", root)
	case c.config.MaliciousChallengePercentage > 0 && rand.Float64()*100 < c.config.MaliciousChallengePercentage:
		shouldChallenge = true
		log.Warn("maliciously challenging valid proposal", "id", id)
	}
	if !shouldChallenge {
		return nil
	}
	if err := c.game.ChallengeProposal(ctx, id, c.address, c.bond); err != nil {
		if errors.Is(err, faultproof.ErrAlreadyChallenged) || errors.Is(err, faultproof.ErrGameOver) {
			return nil
		}
		return err
	}
	challengesIssuedCounter.Inc(1)
	log.Info("challenged proposal", "id", id, "l2BlockNumber", prop.L2BlockNumber)
	return nil
}

func (c *Challenger) handleChallenges(ctx context.Context) error {
	start := c.game.AnchorID() + 1
	count := c.game.ProposalCount()
	for id := start; id < count && id-start < c.config.MaxProposalsToCheck; id++ {
		if err := c.maybeChallenge(ctx, id); err != nil {
			log.Warn("error checking proposal", "id", id, "err", err)
			challengeErrorCounter.Inc(1)
		}
	}
	return nil
}

// handleResolution resolves expired games the agent challenged itself.
func (c *Challenger) handleResolution(ctx context.Context) error {
	start := c.game.AnchorID() + 1
	count := c.game.ProposalCount()
	for id := start; id < count && id-start < c.config.MaxProposalsToCheck; id++ {
		prop, err := c.game.GetProposal(id)
		if err != nil {
			return err
		}
		if prop.Challenger != c.address || prop.Resolution != faultproof.ResolutionInProgress {
			continue
		}
		resolvable, err := c.game.IsResolvable(id)
		if err != nil || !resolvable {
			continue
		}
		if err := c.game.ResolveProposal(ctx, id); err != nil {
			if errors.Is(err, faultproof.ErrAlreadyResolved) {
				continue
			}
			log.Warn("error resolving challenge", "id", id, "err", err)
			resolutionErrorCounter.Inc(1)
			continue
		}
		challengesResolvedCounter.Inc(1)
		log.Info("resolved challenged proposal", "id", id)
	}
	return nil
}

func (c *Challenger) handleBondClaiming(ctx context.Context) error {
	if c.game.Credit(c.address).Sign() == 0 {
		return nil
	}
	amount, err := c.game.ClaimCredit(ctx, c.address)
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

func (c *Challenger) updateMetrics() {
	anchor := c.game.AnchorProposal()
	anchorHeightGauge.Update(int64(anchor.L2BlockNumber))

	var open int64
	start := c.game.AnchorID() + 1
	count := c.game.ProposalCount()
	for id := start; id < count && id-start < c.config.MaxProposalsToCheck; id++ {
		prop, err := c.game.GetProposal(id)
		if err != nil {
			continue
		}
		if prop.Challenger == c.address && prop.Resolution == faultproof.ResolutionInProgress {
			open++
		}
	}
	openChallengesGauge.Update(open)
}
