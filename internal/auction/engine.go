package auction

import (
	"math/big"
	"sort"
	"time"

	"github.com/nemointern/darkpool-svc/internal/data"
	"github.com/nemointern/darkpool-svc/internal/oracle"
	"gitlab.com/distributed_lab/logan/v3"
)

const bpsDenominator = 10000

// Engine matches the revealed orders of a single batch. It is a pure,
// synchronous computation over its input snapshot: no retries, no I/O, and
// at most one match per order per invocation. All failure handling lives
// downstream.
type Engine struct {
	log          *logan.Entry
	oracle       oracle.PriceOracle
	toleranceBps int64
	now          func() time.Time
}

func NewEngine(log *logan.Entry, priceOracle oracle.PriceOracle, toleranceBps int64) *Engine {
	return &Engine{
		log:          log,
		oracle:       priceOracle,
		toleranceBps: toleranceBps,
		now:          time.Now,
	}
}

func (e *Engine) Match(batchID int64, orders []data.Order) data.BatchResult {
	started := e.now()
	res := data.BatchResult{
		BatchID:     batchID,
		Matches:     make([]data.Match, 0),
		TotalOrders: len(orders),
	}

	groups := make(map[string][]data.Order)
	keys := make([]string, 0)
	for _, o := range orders {
		key := pairKey(o.TokenA, o.TokenB)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], o)
	}
	// pair groups are visited in a fixed order so the result is deterministic
	sort.Strings(keys)

	for _, key := range keys {
		res.Matches = append(res.Matches, e.matchPair(groups[key])...)
	}

	res.TotalMatches = len(res.Matches)
	res.ExecutionTimeMs = time.Since(started).Milliseconds()

	e.log.WithFields(logan.F{
		"batch_id":      batchID,
		"total_orders":  res.TotalOrders,
		"total_matches": res.TotalMatches,
	}).Info("batch matched")
	return res
}

func (e *Engine) matchPair(orders []data.Order) []data.Match {
	buys := make([]data.Order, 0, len(orders))
	sells := make([]data.Order, 0, len(orders))
	for _, o := range orders {
		if o.Side == data.SideBuy {
			buys = append(buys, o)
		} else {
			sells = append(sells, o)
		}
	}
	if len(buys) == 0 || len(sells) == 0 {
		return nil
	}

	// price priority; equal prices keep submission order
	sort.SliceStable(buys, func(i, j int) bool { return buys[i].Price.Cmp(buys[j].Price) > 0 })
	sort.SliceStable(sells, func(i, j int) bool { return sells[i].Price.Cmp(sells[j].Price) < 0 })

	refPrice, hasRef := e.oracle.ReferencePrice(orders[0].TokenA, orders[0].TokenB)
	if hasRef {
		return e.matchAroundReference(buys, sells, refPrice)
	}
	return e.matchByCrossing(buys, sells)
}

// matchAroundReference pairs orders whose prices fall inside the tolerance
// band around the reference price; every fill executes at the reference.
func (e *Engine) matchAroundReference(buys, sells []data.Order, refPrice *big.Int) []data.Match {
	matches := make([]data.Match, 0)
	usedSells := make([]bool, len(sells))

	for _, buy := range buys {
		if !e.withinTolerance(buy.Price, refPrice) {
			continue
		}
		for i, sell := range sells {
			if usedSells[i] {
				continue
			}
			if !pairCompatible(buy, sell) || !e.withinTolerance(sell.Price, refPrice) {
				continue
			}

			usedSells[i] = true
			matches = append(matches, data.Match{
				BuyOrderID:     buy.ID,
				SellOrderID:    sell.ID,
				MatchedAmount:  minAmount(buy.Amount, sell.Amount),
				ExecutionPrice: new(big.Int).Set(refPrice),
				Timestamp:      e.now(),
			})
			break
		}
	}
	return matches
}

// matchByCrossing is the fallback when no reference price exists: the first
// sell at or below the buy's price crosses, executing at the truncated mean
// of the two prices.
func (e *Engine) matchByCrossing(buys, sells []data.Order) []data.Match {
	matches := make([]data.Match, 0)
	usedSells := make([]bool, len(sells))

	for _, buy := range buys {
		for i, sell := range sells {
			if usedSells[i] {
				continue
			}
			if !pairCompatible(buy, sell) || sell.Price.Cmp(buy.Price) > 0 {
				continue
			}

			execPrice := new(big.Int).Add(buy.Price, sell.Price)
			execPrice.Div(execPrice, big.NewInt(2))

			usedSells[i] = true
			matches = append(matches, data.Match{
				BuyOrderID:     buy.ID,
				SellOrderID:    sell.ID,
				MatchedAmount:  minAmount(buy.Amount, sell.Amount),
				ExecutionPrice: execPrice,
				Timestamp:      e.now(),
			})
			break
		}
	}
	return matches
}

// withinTolerance checks price against [ref*(1-tol), ref*(1+tol)] using
// integer basis point math only.
func (e *Engine) withinTolerance(price, refPrice *big.Int) bool {
	scaled := new(big.Int).Mul(price, big.NewInt(bpsDenominator))
	lower := new(big.Int).Mul(refPrice, big.NewInt(bpsDenominator-e.toleranceBps))
	upper := new(big.Int).Mul(refPrice, big.NewInt(bpsDenominator+e.toleranceBps))
	return scaled.Cmp(lower) >= 0 && scaled.Cmp(upper) <= 0
}

func pairCompatible(a, b data.Order) bool {
	return (a.TokenA == b.TokenA && a.TokenB == b.TokenB) ||
		(a.TokenA == b.TokenB && a.TokenB == b.TokenA)
}

func pairKey(tokenA, tokenB string) string {
	if tokenA > tokenB {
		tokenA, tokenB = tokenB, tokenA
	}
	return tokenA + "/" + tokenB
}

func minAmount(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
