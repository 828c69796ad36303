package util

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
	"github.com/pkg/errors"

	"github.com/0xFacet/facet-op-succinct/cmd/genericconf"
)

// StartMetrics serves the metrics registry over HTTP. The geth metrics
// package only arms itself when --metrics appears on the command line,
// so requesting metrics through a config file alone is an error.
func StartMetrics(cfg *genericconf.MetricsServerConfig) error {
	if !metrics.Enabled {
		return errors.New("metrics must be enabled via command line by adding --metrics, json config has no effect")
	}
	address := fmt.Sprintf("%v:%v", cfg.Addr, cfg.Port)
	exp.Setup(address)
	go metrics.CollectProcessMetrics(3 * time.Second)
	return nil
}
