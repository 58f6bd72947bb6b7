package oracle

import (
	"context"
	"math/big"
	"net/url"
	"strings"

	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Client caches prices fetched from a remote price feed. Reads never hit the
// network: the matching engine only sees the cache, refreshed by a worker.
type Client struct {
	log       *logan.Entry
	connector *jsonapi.Connector
	pairs     []string
	cache     *Static
}

type priceResponse struct {
	Price string `json:"price"`
}

func NewClient(log *logan.Entry, connector *jsonapi.Connector, pairs []string) *Client {
	return &Client{
		log:       log,
		connector: connector,
		pairs:     pairs,
		cache:     NewStatic(),
	}
}

func (c *Client) ReferencePrice(tokenA, tokenB string) (*big.Int, bool) {
	return c.cache.ReferencePrice(tokenA, tokenB)
}

// Refresh pulls every configured pair once. A pair that fails to refresh
// keeps its previously cached price.
func (c *Client) Refresh(ctx context.Context) error {
	for _, pair := range c.pairs {
		tokens := strings.SplitN(pair, "/", 2)
		if len(tokens) != 2 {
			return errors.Errorf("malformed pair %q in oracle config", pair)
		}

		price, err := c.fetch(ctx, tokens[0], tokens[1])
		if err != nil {
			c.log.WithError(err).WithField("pair", pair).Warn("failed to refresh reference price")
			continue
		}

		c.cache.Set(tokens[0], tokens[1], price)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, tokenA, tokenB string) (*big.Int, error) {
	u, err := url.Parse("/prices/" + tokenA + "/" + tokenB)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse url")
	}

	var resp priceResponse
	if err = c.connector.Get(u, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to get price from feed")
	}

	price, ok := new(big.Int).SetString(resp.Price, 10)
	if !ok || price.Sign() <= 0 {
		return nil, errors.From(errors.New("feed returned a non-positive or malformed price"), logan.F{
			"raw": resp.Price,
		})
	}
	return price, nil
}
