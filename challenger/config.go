package challenger

import (
	"time"

	flag "github.com/spf13/pflag"
)

type Config struct {
	Enable              bool          `koanf:"enable"`
	Address             string        `koanf:"address"`
	PollInterval        time.Duration `koanf:"poll-interval"`
	MetricsInterval     time.Duration `koanf:"metrics-interval"`
	MaxProposalsToCheck uint64        `koanf:"max-proposals-to-check"`
	EnableResolution    bool          `koanf:"enable-resolution"`
	// MaliciousChallengePercentage makes the agent challenge that share of
	// valid proposals, for exercising the defense path on test networks.
	MaliciousChallengePercentage float64 `koanf:"malicious-challenge-percentage"`
}

var DefaultConfig = Config{
	Enable:                       false,
	PollInterval:                 30 * time.Second,
	MetricsInterval:              15 * time.Second,
	MaxProposalsToCheck:          256,
	EnableResolution:             true,
	MaliciousChallengePercentage: 0,
}

func ConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.Bool(prefix+".enable", DefaultConfig.Enable, "run the challenger agent")
	f.String(prefix+".address", DefaultConfig.Address, "identity the challenger acts as")
	f.Duration(prefix+".poll-interval", DefaultConfig.PollInterval, "interval between challenger work loop iterations")
	f.Duration(prefix+".metrics-interval", DefaultConfig.MetricsInterval, "interval between metrics updates")
	f.Uint64(prefix+".max-proposals-to-check", DefaultConfig.MaxProposalsToCheck, "how many proposals past the anchor each sweep examines")
	f.Bool(prefix+".enable-resolution", DefaultConfig.EnableResolution, "resolve the agent's own expired challenges")
	f.Float64(prefix+".malicious-challenge-percentage", DefaultConfig.MaliciousChallengePercentage, "percentage of valid proposals to challenge anyway, testing only")
}
