package config

import (
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const defaultSubject = "darkpool.batches"

type Events struct {
	Disabled bool   `fig:"disabled"`
	URL      string `fig:"url"`
	Subject  string `fig:"subject"`
}

func (c *config) Events() Events {
	return c.eventsOnce.Do(func() interface{} {
		var cfg Events
		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "events")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out events"))
		}

		if cfg.Subject == "" {
			cfg.Subject = defaultSubject
		}
		if !cfg.Disabled && cfg.URL == "" {
			panic("events url is required unless events are disabled")
		}

		return cfg
	}).(Events)
}
