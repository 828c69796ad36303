package faultproof

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

// Config is the flag-facing form of Params. Bonds are decimal wei strings
// and hashes are hex.
type Config struct {
	MaxChallengeDuration time.Duration `koanf:"max-challenge-duration"`
	MaxProveDuration     time.Duration `koanf:"max-prove-duration"`
	ProposerBond         string        `koanf:"proposer-bond"`
	ChallengerBond       string        `koanf:"challenger-bond"`
	FallbackTimeout      time.Duration `koanf:"fallback-timeout"`
	RollupConfigHash     string        `koanf:"rollup-config-hash"`
	AggregationVkey      string        `koanf:"aggregation-vkey"`
	RangeVkeyCommitment  string        `koanf:"range-vkey-commitment"`
	L1HeadOffset         uint64        `koanf:"l1-head-offset"`
	GenesisRoot          string        `koanf:"genesis-root"`
	GenesisL2BlockNumber uint64        `koanf:"genesis-l2-block-number"`
	Owner                string        `koanf:"owner"`
}

var DefaultConfig = Config{
	MaxChallengeDuration: 7 * 24 * time.Hour,
	MaxProveDuration:     24 * time.Hour,
	ProposerBond:         "1000000000000000000",
	ChallengerBond:       "1000000000000000000",
	FallbackTimeout:      14 * 24 * time.Hour,
	L1HeadOffset:         10,
}

func ConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.Duration(prefix+".max-challenge-duration", DefaultConfig.MaxChallengeDuration, "challenge window starting at proposal submission")
	f.Duration(prefix+".max-prove-duration", DefaultConfig.MaxProveDuration, "prove window starting at challenge time")
	f.String(prefix+".proposer-bond", DefaultConfig.ProposerBond, "bond attached to each proposal in wei")
	f.String(prefix+".challenger-bond", DefaultConfig.ChallengerBond, "bond attached to each challenge in wei")
	f.Duration(prefix+".fallback-timeout", DefaultConfig.FallbackTimeout, "quiet period after which proposal submission becomes permissionless")
	f.String(prefix+".rollup-config-hash", "", "hash of the rollup configuration proofs are generated against")
	f.String(prefix+".aggregation-vkey", "", "verification key for aggregation proofs")
	f.String(prefix+".range-vkey-commitment", "", "commitment to the range program verification key")
	f.Uint64(prefix+".l1-head-offset", DefaultConfig.L1HeadOffset, "blocks behind the l1 tip the l1 head reference is captured")
	f.String(prefix+".genesis-root", "", "trusted output root seeding the anchor")
	f.Uint64(prefix+".genesis-l2-block-number", 0, "l2 height of the trusted genesis root")
	f.String(prefix+".owner", "", "address allowed to mutate the proposer allow-list")
}

func parseBond(s, name string) (*big.Int, error) {
	bond, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid %s bond %q", name, s)
	}
	return bond, nil
}

// Params converts the flag-facing config into validated engine parameters.
func (c *Config) Params() (Params, error) {
	proposerBond, err := parseBond(c.ProposerBond, "proposer")
	if err != nil {
		return Params{}, err
	}
	challengerBond, err := parseBond(c.ChallengerBond, "challenger")
	if err != nil {
		return Params{}, err
	}
	params := Params{
		MaxChallengeDuration: uint64(c.MaxChallengeDuration / time.Second),
		MaxProveDuration:     uint64(c.MaxProveDuration / time.Second),
		ProposerBond:         proposerBond,
		ChallengerBond:       challengerBond,
		FallbackTimeout:      uint64(c.FallbackTimeout / time.Second),
		RollupConfigHash:     common.HexToHash(c.RollupConfigHash),
		AggregationVKey:      common.HexToHash(c.AggregationVkey),
		RangeVkeyCommitment:  common.HexToHash(c.RangeVkeyCommitment),
		L1HeadOffset:         c.L1HeadOffset,
		GenesisRoot:          common.HexToHash(c.GenesisRoot),
		GenesisL2BlockNumber: c.GenesisL2BlockNumber,
		Owner:                common.HexToAddress(c.Owner),
	}
	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}
