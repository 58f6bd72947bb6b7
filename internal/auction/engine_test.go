package auction

import (
	"math/big"
	"testing"

	"github.com/nemointern/darkpool-svc/internal/data"
	"github.com/nemointern/darkpool-svc/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

const testToleranceBps = 500

func revealedOrder(id int64, side data.OrderSide, tokenA, tokenB string, amount, price *big.Int) data.Order {
	return data.Order{
		ID:      id,
		TokenA:  tokenA,
		TokenB:  tokenB,
		Side:    side,
		BatchID: 1,
		Status:  data.StatusRevealed,
		Amount:  amount,
		Price:   price,
	}
}

func newTestEngine(prices *oracle.Static) *Engine {
	return NewEngine(logan.New(), prices, testToleranceBps)
}

func TestMatchAtReferencePrice(t *testing.T) {
	prices := oracle.NewStatic()
	prices.Set("WCBTC", "USDT", scaled(1000))
	engine := newTestEngine(prices)

	res := engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", scaled(1000), scaled(1000)),
		revealedOrder(2, data.SideSell, "WCBTC", "USDT", scaled(1000), scaled(1000)),
	})

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, int64(1), m.BuyOrderID)
	assert.Equal(t, int64(2), m.SellOrderID)
	assert.Zero(t, m.MatchedAmount.Cmp(scaled(1000)))
	assert.Zero(t, m.ExecutionPrice.Cmp(scaled(1000)))
	assert.Equal(t, 2, res.TotalOrders)
	assert.Equal(t, 1, res.TotalMatches)
}

func TestMatchSkipsOrdersOutsideToleranceBand(t *testing.T) {
	prices := oracle.NewStatic()
	prices.Set("WCBTC", "USDT", scaled(1000))
	engine := newTestEngine(prices)

	// 1060 is 6% above the reference, beyond the 5% band
	res := engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", scaled(100), scaled(1060)),
		revealedOrder(2, data.SideSell, "WCBTC", "USDT", scaled(100), scaled(1000)),
	})
	assert.Empty(t, res.Matches)

	// 1050 sits exactly on the band edge and is eligible
	res = engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", scaled(100), scaled(1050)),
		revealedOrder(2, data.SideSell, "WCBTC", "USDT", scaled(100), scaled(950)),
	})
	require.Len(t, res.Matches, 1)
	assert.Zero(t, res.Matches[0].ExecutionPrice.Cmp(scaled(1000)))
}

func TestMatchExecutionPriceNeverLeavesBand(t *testing.T) {
	prices := oracle.NewStatic()
	ref := scaled(1000)
	prices.Set("WCBTC", "USDT", ref)
	engine := newTestEngine(prices)

	orders := []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", scaled(10), scaled(1049)),
		revealedOrder(2, data.SideBuy, "WCBTC", "USDT", scaled(20), scaled(990)),
		revealedOrder(3, data.SideSell, "WCBTC", "USDT", scaled(15), scaled(960)),
		revealedOrder(4, data.SideSell, "WCBTC", "USDT", scaled(5), scaled(1010)),
	}
	res := engine.Match(1, orders)

	lower := new(big.Int).Mul(ref, big.NewInt(10000-testToleranceBps))
	upper := new(big.Int).Mul(ref, big.NewInt(10000+testToleranceBps))
	for _, m := range res.Matches {
		p := new(big.Int).Mul(m.ExecutionPrice, big.NewInt(10000))
		assert.True(t, p.Cmp(lower) >= 0 && p.Cmp(upper) <= 0)
	}
}

func TestMatchDirectCrossingWithoutReference(t *testing.T) {
	engine := newTestEngine(oracle.NewStatic())

	res := engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", big.NewInt(500), big.NewInt(1001)),
		revealedOrder(2, data.SideSell, "WCBTC", "USDT", big.NewInt(300), big.NewInt(900)),
	})

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Zero(t, m.MatchedAmount.Cmp(big.NewInt(300)))
	// (1001 + 900) / 2 truncates to 950
	assert.Zero(t, m.ExecutionPrice.Cmp(big.NewInt(950)))
}

func TestMatchDirectCrossingRequiresCross(t *testing.T) {
	engine := newTestEngine(oracle.NewStatic())

	res := engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", big.NewInt(500), big.NewInt(800)),
		revealedOrder(2, data.SideSell, "WCBTC", "USDT", big.NewInt(300), big.NewInt(900)),
	})
	assert.Empty(t, res.Matches)
}

func TestMatchAtMostOncePerOrder(t *testing.T) {
	engine := newTestEngine(oracle.NewStatic())

	// one large buy against two crossing sells: only the first sell in
	// price-priority order is consumed
	res := engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", big.NewInt(1000), big.NewInt(1000)),
		revealedOrder(2, data.SideSell, "WCBTC", "USDT", big.NewInt(300), big.NewInt(900)),
		revealedOrder(3, data.SideSell, "WCBTC", "USDT", big.NewInt(300), big.NewInt(950)),
	})

	require.Len(t, res.Matches, 1)
	assert.Equal(t, int64(2), res.Matches[0].SellOrderID)
	assert.Zero(t, res.Matches[0].MatchedAmount.Cmp(big.NewInt(300)))
}

func TestMatchMirroredTokenOrdering(t *testing.T) {
	prices := oracle.NewStatic()
	prices.Set("WCBTC", "USDT", scaled(1000))
	engine := newTestEngine(prices)

	res := engine.Match(1, []data.Order{
		revealedOrder(1, data.SideBuy, "WCBTC", "USDT", scaled(10), scaled(1000)),
		revealedOrder(2, data.SideSell, "USDT", "WCBTC", scaled(10), scaled(1000)),
	})
	require.Len(t, res.Matches, 1)
}

func TestMatchTieBreakIsSubmissionOrder(t *testing.T) {
	engine := newTestEngine(oracle.NewStatic())

	// equally priced sells: the earlier one in the input wins
	res := engine.Match(1, []data.Order{
		revealedOrder(5, data.SideSell, "WCBTC", "USDT", big.NewInt(100), big.NewInt(900)),
		revealedOrder(6, data.SideSell, "WCBTC", "USDT", big.NewInt(100), big.NewInt(900)),
		revealedOrder(7, data.SideBuy, "WCBTC", "USDT", big.NewInt(100), big.NewInt(900)),
	})

	require.Len(t, res.Matches, 1)
	assert.Equal(t, int64(5), res.Matches[0].SellOrderID)
}

func TestMatchDeterministicAcrossPairs(t *testing.T) {
	engine := newTestEngine(oracle.NewStatic())

	orders := []data.Order{
		revealedOrder(1, data.SideBuy, "WETH", "USDT", big.NewInt(10), big.NewInt(50)),
		revealedOrder(2, data.SideSell, "WETH", "USDT", big.NewInt(10), big.NewInt(50)),
		revealedOrder(3, data.SideBuy, "WCBTC", "USDT", big.NewInt(10), big.NewInt(70)),
		revealedOrder(4, data.SideSell, "WCBTC", "USDT", big.NewInt(10), big.NewInt(70)),
	}

	first := engine.Match(1, orders)
	second := engine.Match(1, orders)
	require.Equal(t, len(first.Matches), len(second.Matches))
	for i := range first.Matches {
		assert.Equal(t, first.Matches[i].BuyOrderID, second.Matches[i].BuyOrderID)
		assert.Equal(t, first.Matches[i].SellOrderID, second.Matches[i].SellOrderID)
	}
}

func TestMatchEmptyBatch(t *testing.T) {
	engine := newTestEngine(oracle.NewStatic())
	res := engine.Match(7, nil)
	assert.Equal(t, int64(7), res.BatchID)
	assert.Empty(t, res.Matches)
	assert.Zero(t, res.TotalOrders)
}
