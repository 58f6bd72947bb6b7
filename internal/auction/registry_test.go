package auction

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nemointern/darkpool-svc/internal/commitment"
	"github.com/nemointern/darkpool-svc/internal/data"
	"github.com/nemointern/darkpool-svc/internal/data/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func scaled(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// newTestRegistry builds a registry whose single batch is in the given phase.
func newTestRegistry(t *testing.T, phase data.BatchPhase) (*Registry, data.Orders) {
	t.Helper()

	start := time.Now()
	switch phase {
	case data.PhaseReveal:
		start = start.Add(-320 * time.Second)
	case data.PhaseProcessing:
		start = start.Add(-500 * time.Second)
	}

	batches := memory.NewBatches()
	require.NoError(t, batches.Insert(data.Batch{
		ID:             1,
		StartTime:      start,
		CommitDuration: 300 * time.Second,
		RevealDuration: 180 * time.Second,
	}))

	orders := memory.NewOrders()
	return NewRegistry(logan.New(), orders, batches), orders
}

func commitOrder(t *testing.T, orders data.Orders, trader common.Address, side data.OrderSide, amount, price *big.Int, salt string) int64 {
	t.Helper()
	id, err := orders.Insert(data.Order{
		Trader:     trader,
		TokenA:     "WCBTC",
		TokenB:     "USDT",
		Side:       side,
		BatchID:    1,
		CommitHash: commitment.Commit(amount, price, salt, side),
		Status:     data.StatusCommitted,
	})
	require.NoError(t, err)
	return id
}

func TestSubmitAssignsMonotonicIDs(t *testing.T) {
	r, _ := newTestRegistry(t, data.PhaseCommit)

	hash := commitment.Commit(scaled(10), scaled(5), "s", data.SideBuy)
	first, err := r.Submit(alice, "WCBTC", "USDT", data.SideBuy, hash)
	require.NoError(t, err)
	second, err := r.Submit(alice, "WCBTC", "USDT", data.SideSell, hash)
	require.NoError(t, err)

	assert.Equal(t, first+1, second)

	order, err := r.Order(first)
	require.NoError(t, err)
	assert.Equal(t, data.StatusCommitted, order.Status)
	assert.Equal(t, hash, order.CommitHash)
	assert.Nil(t, order.Amount)
}

func TestSubmitOutsideCommitPhase(t *testing.T) {
	for _, phase := range []data.BatchPhase{data.PhaseReveal, data.PhaseProcessing} {
		t.Run(phase.String(), func(t *testing.T) {
			r, _ := newTestRegistry(t, phase)
			_, err := r.Submit(alice, "WCBTC", "USDT", data.SideBuy, common.Hash{})
			assert.ErrorIs(t, err, ErrInvalidPhase)
		})
	}
}

func TestRevealHappyPathExactlyOnce(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseReveal)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(1000), scaled(1000), "nonce-1")

	require.NoError(t, r.Reveal(id, alice, scaled(1000), scaled(1000), "nonce-1"))

	order, err := r.Order(id)
	require.NoError(t, err)
	assert.Equal(t, data.StatusRevealed, order.Status)
	assert.Zero(t, order.Amount.Cmp(scaled(1000)))
	assert.Equal(t, "nonce-1", order.Salt)

	err = r.Reveal(id, alice, scaled(1000), scaled(1000), "nonce-1")
	assert.ErrorIs(t, err, ErrAlreadyRevealed)
}

func TestRevealOutsideRevealPhase(t *testing.T) {
	for _, phase := range []data.BatchPhase{data.PhaseCommit, data.PhaseProcessing} {
		t.Run(phase.String(), func(t *testing.T) {
			r, orders := newTestRegistry(t, phase)
			id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

			err := r.Reveal(id, alice, scaled(10), scaled(5), "n")
			assert.ErrorIs(t, err, ErrInvalidPhase)
		})
	}
}

func TestRevealCommitmentMismatch(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseReveal)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	assert.ErrorIs(t, r.Reveal(id, alice, scaled(10), scaled(5), "wrong"), ErrCommitmentMismatch)
	assert.ErrorIs(t, r.Reveal(id, alice, scaled(11), scaled(5), "n"), ErrCommitmentMismatch)

	// the order stays revealable after a failed attempt
	require.NoError(t, r.Reveal(id, alice, scaled(10), scaled(5), "n"))
}

func TestRevealByNonOwner(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseReveal)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	err := r.Reveal(id, bob, scaled(10), scaled(5), "n")
	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestRevealUnknownOrder(t *testing.T) {
	r, _ := newTestRegistry(t, data.PhaseReveal)
	err := r.Reveal(42, alice, scaled(10), scaled(5), "n")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelByNonOwner(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseCommit)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	assert.ErrorIs(t, r.Cancel(id, bob), ErrUnauthorized)

	order, err := r.Order(id)
	require.NoError(t, err)
	assert.Equal(t, data.StatusCommitted, order.Status)
}

func TestCancelMatchedOrder(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseCommit)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	order, err := orders.Get(id)
	require.NoError(t, err)
	order.Status = data.StatusFullyExecuted
	require.NoError(t, orders.Update(*order))

	assert.ErrorIs(t, r.Cancel(id, alice), ErrAlreadyMatched)
}

func TestCancelDuringProcessing(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseProcessing)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	assert.ErrorIs(t, r.Cancel(id, alice), ErrInvalidPhase)
}

func TestCancelOrderFromSupersededBatch(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseCommit)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	order, err := orders.Get(id)
	require.NoError(t, err)
	order.BatchID = 0 // belongs to an older batch than the current one
	require.NoError(t, orders.Update(*order))

	assert.ErrorIs(t, r.Cancel(id, alice), ErrInvalidPhase)
}

func TestCancelHappyPath(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseCommit)
	id := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "n")

	require.NoError(t, r.Cancel(id, alice))

	order, err := r.Order(id)
	require.NoError(t, err)
	assert.Equal(t, data.StatusCancelled, order.Status)
}

func TestRevealedForBatchKeepsSubmissionOrder(t *testing.T) {
	r, orders := newTestRegistry(t, data.PhaseReveal)
	first := commitOrder(t, orders, alice, data.SideBuy, scaled(10), scaled(5), "a")
	second := commitOrder(t, orders, bob, data.SideSell, scaled(10), scaled(5), "b")

	require.NoError(t, r.Reveal(second, bob, scaled(10), scaled(5), "b"))
	require.NoError(t, r.Reveal(first, alice, scaled(10), scaled(5), "a"))

	revealed, err := r.RevealedForBatch(1)
	require.NoError(t, err)
	require.Len(t, revealed, 2)
	assert.Equal(t, first, revealed[0].ID)
	assert.Equal(t, second, revealed[1].ID)
}
