package config

import (
	"net/http"
	"net/url"
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/tokend/connectors/signed"
)

const defaultRefreshPeriod = 30 * time.Second

type Oracle struct {
	Connector     *jsonapi.Connector
	Pairs         []string
	RefreshPeriod time.Duration
}

func (c *config) Oracle() Oracle {
	return c.oracleOnce.Do(func() interface{} {
		var cfg struct {
			Endpoint       *url.URL      `fig:"endpoint,required"`
			Pairs          []string      `fig:"pairs,required"`
			RequestTimeout time.Duration `fig:"request_timeout"`
			RefreshPeriod  time.Duration `fig:"refresh_period"`
		}
		err := figure.Out(&cfg).
			With(figure.BaseHooks).
			From(kv.MustGetStringMap(c.getter, "oracle")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out oracle"))
		}

		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}
		if cfg.RefreshPeriod == 0 {
			cfg.RefreshPeriod = defaultRefreshPeriod
		}

		return Oracle{
			Connector:     jsonapi.NewConnector(signed.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.Endpoint)),
			Pairs:         cfg.Pairs,
			RefreshPeriod: cfg.RefreshPeriod,
		}
	}).(Oracle)
}
