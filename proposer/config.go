package proposer

import (
	"time"

	flag "github.com/spf13/pflag"
)

type Config struct {
	Enable                 bool          `koanf:"enable"`
	Address                string        `koanf:"address"`
	PollInterval           time.Duration `koanf:"poll-interval"`
	MetricsInterval        time.Duration `koanf:"metrics-interval"`
	ProposalIntervalBlocks uint64        `koanf:"proposal-interval-blocks"`
	MaxProposalsToCheck    uint64        `koanf:"max-proposals-to-check"`
	EnableResolution       bool          `koanf:"enable-resolution"`
	FastFinality           bool          `koanf:"fast-finality"`
}

var DefaultConfig = Config{
	Enable:                 false,
	PollInterval:           30 * time.Second,
	MetricsInterval:        15 * time.Second,
	ProposalIntervalBlocks: 1800,
	MaxProposalsToCheck:    256,
	EnableResolution:       true,
	FastFinality:           false,
}

func ConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.Bool(prefix+".enable", DefaultConfig.Enable, "run the proposer agent")
	f.String(prefix+".address", DefaultConfig.Address, "identity the proposer acts as")
	f.Duration(prefix+".poll-interval", DefaultConfig.PollInterval, "interval between proposer work loop iterations")
	f.Duration(prefix+".metrics-interval", DefaultConfig.MetricsInterval, "interval between metrics updates")
	f.Uint64(prefix+".proposal-interval-blocks", DefaultConfig.ProposalIntervalBlocks, "l2 blocks between consecutive proposals")
	f.Uint64(prefix+".max-proposals-to-check", DefaultConfig.MaxProposalsToCheck, "how many proposals past the anchor each sweep examines")
	f.Bool(prefix+".enable-resolution", DefaultConfig.EnableResolution, "resolve expired proposals in addition to creating new ones")
	f.Bool(prefix+".fast-finality", DefaultConfig.FastFinality, "prove each proposal immediately after submitting it")
}
