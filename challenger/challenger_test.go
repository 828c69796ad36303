package challenger

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/0xFacet/facet-op-succinct/faultproof"
	"github.com/0xFacet/facet-op-succinct/l2state"
	"github.com/0xFacet/facet-op-succinct/proofs"
	"github.com/0xFacet/facet-op-succinct/util/timeref"
)

var (
	owner = common.HexToAddress("0x01")
	alice = common.HexToAddress("0xaa")
	bob   = common.HexToAddress("0xbb")
)

type stubProvider struct {
	mutex  sync.Mutex
	latest uint64
}

func chainRoot(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n + 1))
}

func (s *stubProvider) OutputRootAt(_ context.Context, n uint64) (common.Hash, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if n > s.latest {
		return common.Hash{}, errors.Wrapf(l2state.ErrFutureBlock, "height %d, tip %d", n, s.latest)
	}
	return chainRoot(n), nil
}

func (s *stubProvider) LatestHeight(context.Context) (uint64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.latest, nil
}

func (s *stubProvider) FinalizedHeight(context.Context) (uint64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.latest, nil
}

func testParams() faultproof.Params {
	return faultproof.Params{
		MaxChallengeDuration: 100,
		MaxProveDuration:     50,
		ProposerBond:         big.NewInt(1000),
		ChallengerBond:       big.NewInt(400),
		FallbackTimeout:      10000,
		RollupConfigHash:     common.HexToHash("0x02"),
		AggregationVKey:      common.HexToHash("0x03"),
		RangeVkeyCommitment:  common.HexToHash("0x04"),
		L1HeadOffset:         10,
		GenesisRoot:          chainRoot(100),
		GenesisL2BlockNumber: 100,
		Owner:                owner,
	}
}

type challengerTest struct {
	agent *Challenger
	game  *faultproof.Game
	clock *timeref.Artificial
}

func newChallengerTest(t *testing.T, config Config) *challengerTest {
	t.Helper()
	clock := timeref.NewArtificial(1_700_000_000)
	transfer := func(common.Address, *big.Int) error { return nil }
	game, err := faultproof.NewGame(testParams(), clock, stubL1{}, proofs.MockVerifier{}, transfer)
	require.NoError(t, err)
	require.NoError(t, game.SetProposer(context.Background(), owner, alice, true))
	agent := NewChallenger(config, game, &stubProvider{latest: 500}, bob)
	return &challengerTest{agent: agent, game: game, clock: clock}
}

type stubL1 struct{}

func (stubL1) ReferenceAt(uint64) common.Hash { return common.HexToHash("0x1111") }

func testConfig() Config {
	config := DefaultConfig
	config.PollInterval = 10 * time.Millisecond
	return config
}

func (ct *challengerTest) submit(t *testing.T, height uint64, root common.Hash) uint64 {
	t.Helper()
	id, err := ct.game.SubmitProposal(context.Background(), alice, root, height, big.NewInt(1000))
	require.NoError(t, err)
	return id
}

func TestChallengerChallengesInvalidClaim(t *testing.T) {
	ct := newChallengerTest(t, testConfig())
	ctx := context.Background()
	id := ct.submit(t, 200, common.HexToHash("0xbad"))

	require.NoError(t, ct.agent.handleChallenges(ctx))

	p, err := ct.game.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, faultproof.StatusChallenged, p.Status)
	require.Equal(t, bob, p.Challenger)
}

func TestChallengerLeavesValidClaimAlone(t *testing.T) {
	ct := newChallengerTest(t, testConfig())
	ctx := context.Background()
	id := ct.submit(t, 200, chainRoot(200))

	require.NoError(t, ct.agent.handleChallenges(ctx))

	p, err := ct.game.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, faultproof.StatusUnchallenged, p.Status)
}

func TestChallengerChallengesFutureClaim(t *testing.T) {
	ct := newChallengerTest(t, testConfig())
	ctx := context.Background()
	// Claims a height the chain has not produced.
	id := ct.submit(t, 600, chainRoot(600))

	require.NoError(t, ct.agent.handleChallenges(ctx))

	p, err := ct.game.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, faultproof.StatusChallenged, p.Status)
}

func TestChallengerSkipsAlreadyChallenged(t *testing.T) {
	ct := newChallengerTest(t, testConfig())
	ctx := context.Background()
	id := ct.submit(t, 200, common.HexToHash("0xbad"))
	carol := common.HexToAddress("0xcc")
	require.NoError(t, ct.game.ChallengeProposal(ctx, id, carol, big.NewInt(400)))

	require.NoError(t, ct.agent.handleChallenges(ctx))

	p, err := ct.game.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, carol, p.Challenger)
}

func TestChallengerMaliciousMode(t *testing.T) {
	config := testConfig()
	config.MaliciousChallengePercentage = 100
	ct := newChallengerTest(t, config)
	ctx := context.Background()
	id := ct.submit(t, 200, chainRoot(200))

	require.NoError(t, ct.agent.handleChallenges(ctx))

	p, err := ct.game.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, faultproof.StatusChallenged, p.Status)
}

func TestChallengerResolvesAndClaims(t *testing.T) {
	ct := newChallengerTest(t, testConfig())
	ctx := context.Background()
	id := ct.submit(t, 200, common.HexToHash("0xbad"))
	require.NoError(t, ct.agent.maybeChallenge(ctx, id))

	// Prove window expires with no proof.
	ct.clock.Advance(51)
	require.NoError(t, ct.agent.handleResolution(ctx))

	p, err := ct.game.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, faultproof.ResolutionChallengerWins, p.Resolution)

	require.Equal(t, big.NewInt(1400), ct.game.Credit(bob))
	require.NoError(t, ct.agent.handleBondClaiming(ctx))
	require.Equal(t, big.NewInt(0), ct.game.Credit(bob))
}

func TestChallengerReactsToSubmissionEvents(t *testing.T) {
	ct := newChallengerTest(t, testConfig())
	ct.agent.Start(context.Background())
	defer ct.agent.StopAndWait()

	id := ct.submit(t, 200, common.HexToHash("0xbad"))

	require.Eventually(t, func() bool {
		p, err := ct.game.GetProposal(id)
		return err == nil && p.Status == faultproof.StatusChallenged
	}, 5*time.Second, 10*time.Millisecond)
}
