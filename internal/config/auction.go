package config

import (
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const (
	defaultCommitDuration     = 300 * time.Second
	defaultRevealDuration     = 180 * time.Second
	defaultToleranceBps       = 500
	defaultProcessPeriod      = time.Second
	defaultSettlementAttempts = 3
	defaultSettlementBackoff  = 5 * time.Second
)

type Auction struct {
	CommitDuration     time.Duration `fig:"commit_duration"`
	RevealDuration     time.Duration `fig:"reveal_duration"`
	ToleranceBps       int64         `fig:"tolerance_bps"`
	ProcessPeriod      time.Duration `fig:"process_period"`
	SettlementAttempts int           `fig:"settlement_attempts"`
	SettlementBackoff  time.Duration `fig:"settlement_backoff"`
}

func (c *config) Auction() Auction {
	return c.auctionOnce.Do(func() interface{} {
		var cfg Auction
		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "auction")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out auction"))
		}

		if cfg.CommitDuration == 0 {
			cfg.CommitDuration = defaultCommitDuration
		}
		if cfg.RevealDuration == 0 {
			cfg.RevealDuration = defaultRevealDuration
		}
		if cfg.ToleranceBps == 0 {
			cfg.ToleranceBps = defaultToleranceBps
		}
		if cfg.ToleranceBps < 0 || cfg.ToleranceBps >= 10000 {
			panic(errors.Errorf("tolerance_bps=%d out of range", cfg.ToleranceBps))
		}
		if cfg.ProcessPeriod == 0 {
			cfg.ProcessPeriod = defaultProcessPeriod
		}
		if cfg.SettlementAttempts == 0 {
			cfg.SettlementAttempts = defaultSettlementAttempts
		}
		if cfg.SettlementBackoff == 0 {
			cfg.SettlementBackoff = defaultSettlementBackoff
		}

		return cfg
	}).(Auction)
}
