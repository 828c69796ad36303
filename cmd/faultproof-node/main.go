// faultproof-node runs the dispute game engine with the output oracle
// plugged into a live L2 node, optionally driving proposer and
// challenger agents against it.
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/0xFacet/facet-op-succinct/challenger"
	"github.com/0xFacet/facet-op-succinct/cmd/genericconf"
	"github.com/0xFacet/facet-op-succinct/cmd/util"
	"github.com/0xFacet/facet-op-succinct/faultproof"
	"github.com/0xFacet/facet-op-succinct/l2state"
	"github.com/0xFacet/facet-op-succinct/proofs"
	"github.com/0xFacet/facet-op-succinct/proposer"
	"github.com/0xFacet/facet-op-succinct/util/timeref"
)

type NodeConfig struct {
	Conf           genericconf.ConfConfig          `koanf:"conf"`
	LogLevel       string                          `koanf:"log-level"`
	LogType        string                          `koanf:"log-type"`
	FileLogging    genericconf.FileLoggingConfig   `koanf:"file-logging"`
	Metrics        bool                            `koanf:"metrics"`
	MetricsServer  genericconf.MetricsServerConfig `koanf:"metrics-server"`
	L1RPC          string                          `koanf:"l1-rpc"`
	L2RPC          string                          `koanf:"l2-rpc"`
	L1PollInterval time.Duration                   `koanf:"l1-poll-interval"`
	Game           faultproof.Config               `koanf:"game"`
	Proposer       proposer.Config                 `koanf:"proposer"`
	Challenger     challenger.Config               `koanf:"challenger"`
}

var NodeConfigDefault = NodeConfig{
	Conf:           genericconf.ConfConfigDefault,
	LogLevel:       genericconf.DefaultLogLevel,
	LogType:        genericconf.DefaultLogType,
	FileLogging:    genericconf.DefaultFileLoggingConfig,
	Metrics:        false,
	MetricsServer:  genericconf.MetricsServerConfigDefault,
	L1PollInterval: 12 * time.Second,
	Game:           faultproof.DefaultConfig,
	Proposer:       proposer.DefaultConfig,
	Challenger:     challenger.DefaultConfig,
}

func NodeConfigAddOptions(f *flag.FlagSet) {
	genericconf.ConfConfigAddOptions("conf", f)
	f.String("log-level", NodeConfigDefault.LogLevel, "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", NodeConfigDefault.LogType, "log type (plaintext or json)")
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	f.Bool("metrics", NodeConfigDefault.Metrics, "enable metrics")
	genericconf.MetricsServerAddOptions("metrics-server", f)
	f.String("l1-rpc", "", "l1 rpc endpoint the head tracker follows")
	f.String("l2-rpc", "", "l2 rpc endpoint output roots are computed from")
	f.Duration("l1-poll-interval", NodeConfigDefault.L1PollInterval, "how often to poll the l1 head")
	faultproof.ConfigAddOptions("game", f)
	proposer.ConfigAddOptions("proposer", f)
	challenger.ConfigAddOptions("challenger", f)
}

func ParseNode(args []string) (*NodeConfig, error) {
	f := flag.NewFlagSet("faultproof-node", flag.ContinueOnError)
	NodeConfigAddOptions(f)
	k, err := util.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config NodeConfig
	if err := util.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func main() {
	os.Exit(mainImpl())
}

func mainImpl() int {
	config, err := ParseNode(os.Args[1:])
	if err != nil {
		if errors.Is(err, genericconf.ErrConfigDumped) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error parsing configuration: %v\n", err)
		return 1
	}
	if err := genericconf.InitLog(config.LogType, config.LogLevel, &config.FileLogging); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logging: %v\n", err)
		return 1
	}
	if config.Metrics {
		if err := util.StartMetrics(&config.MetricsServer); err != nil {
			log.Error("error starting metrics", "err", err)
			return 1
		}
	}

	ctx := context.Background()

	if config.L1RPC == "" || config.L2RPC == "" {
		log.Error("both --l1-rpc and --l2-rpc are required")
		return 1
	}
	l1Client, err := ethclient.DialContext(ctx, config.L1RPC)
	if err != nil {
		log.Error("error dialing l1 rpc", "url", config.L1RPC, "err", err)
		return 1
	}
	headTracker, err := l2state.NewHeadTracker(l1Client, config.L1PollInterval, 1024)
	if err != nil {
		log.Error("error creating l1 head tracker", "err", err)
		return 1
	}
	provider, err := l2state.DialEthProvider(ctx, config.L2RPC, 1024)
	if err != nil {
		log.Error("error dialing l2 rpc", "url", config.L2RPC, "err", err)
		return 1
	}

	params, err := config.Game.Params()
	if err != nil {
		log.Error("invalid game configuration", "err", err)
		return 1
	}
	// Payouts leave the engine through this hook. Without a custodial
	// backend the credit is just recorded.
	transfer := func(recipient common.Address, amount *big.Int) error {
		log.Info("paying out credit", "recipient", recipient, "amount", amount)
		return nil
	}
	game, err := faultproof.NewGame(params, timeref.NewWallClock(), headTracker, proofs.MockVerifier{}, transfer)
	if err != nil {
		log.Error("error creating dispute game", "err", err)
		return 1
	}

	headTracker.Start(ctx)
	defer headTracker.StopAndWait()

	if config.Proposer.Enable {
		agent := proposer.NewProposer(config.Proposer, game, provider, proofs.MockGenerator{}, common.HexToAddress(config.Proposer.Address))
		agent.Start(ctx)
		defer agent.StopAndWait()
		log.Info("proposer agent started", "address", config.Proposer.Address)
	}
	if config.Challenger.Enable {
		agent := challenger.NewChallenger(config.Challenger, game, provider, common.HexToAddress(config.Challenger.Address))
		agent.Start(ctx)
		defer agent.StopAndWait()
		log.Info("challenger agent started", "address", config.Challenger.Address)
	}

	anchorRoot, anchorHeight := game.AnchorRoot()
	log.Info("dispute game running", "anchorRoot", anchorRoot, "anchorHeight", anchorHeight)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint
	signal.Stop(sigint)
	close(sigint)
	log.Info("shutting down")
	return 0
}
