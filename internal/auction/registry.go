package auction

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nemointern/darkpool-svc/internal/commitment"
	"github.com/nemointern/darkpool-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Registry owns all order mutations. Every operation is gated by the phase of
// the order's batch; phase checks and mutations run under one lock so
// concurrent callers cannot interleave them.
type Registry struct {
	mu      sync.Mutex
	log     *logan.Entry
	orders  data.Orders
	batches data.Batches
	now     func() time.Time
}

func NewRegistry(log *logan.Entry, orders data.Orders, batches data.Batches) *Registry {
	return &Registry{
		log:     log,
		orders:  orders,
		batches: batches,
		now:     time.Now,
	}
}

// Submit stores a committed order in the current batch. Only the commitment
// hash, pair and side are public at this point.
func (r *Registry) Submit(trader common.Address, tokenA, tokenB string, side data.OrderSide, commitHash common.Hash) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.batches.Current()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get current batch")
	}
	if cur == nil || Phase(*cur, r.now()) != data.PhaseCommit {
		return 0, ErrInvalidPhase
	}

	id, err := r.orders.Insert(data.Order{
		Trader:     trader,
		TokenA:     tokenA,
		TokenB:     tokenB,
		Side:       side,
		BatchID:    cur.ID,
		CommitHash: commitHash,
		Status:     data.StatusCommitted,
		CreatedAt:  r.now(),
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert order")
	}

	if err = r.batches.AttachOrder(cur.ID, id); err != nil {
		return 0, errors.Wrap(err, "failed to attach order to batch")
	}

	r.log.WithFields(logan.F{"order_id": id, "batch_id": cur.ID, "side": side.String()}).
		Debug("order committed")
	return id, nil
}

// Reveal discloses an order's hidden values. The recomputed commitment must
// reproduce the stored hash exactly, and an order can be revealed at most
// once, only during its batch's REVEAL phase.
func (r *Registry) Reveal(orderID int64, caller common.Address, amount, price *big.Int, salt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.orders.Get(orderID)
	if err != nil {
		return errors.Wrap(err, "failed to get order")
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Trader != caller {
		return ErrNotOrderOwner
	}

	switch order.Status {
	case data.StatusCommitted:
	case data.StatusRevealed:
		return ErrAlreadyRevealed
	default:
		return ErrInvalidPhase
	}

	batch, err := r.batches.Get(order.BatchID)
	if err != nil {
		return errors.Wrap(err, "failed to get order's batch")
	}
	if batch == nil || Phase(*batch, r.now()) != data.PhaseReveal {
		return ErrInvalidPhase
	}

	if amount == nil || amount.Sign() <= 0 || price == nil || price.Sign() <= 0 {
		return ErrCommitmentMismatch
	}
	if !commitment.Verify(order.CommitHash, amount, price, salt, order.Side) {
		return ErrCommitmentMismatch
	}

	order.Amount = new(big.Int).Set(amount)
	order.Price = new(big.Int).Set(price)
	order.Salt = salt
	order.Status = data.StatusRevealed
	order.RevealedAt = r.now()
	if err = r.orders.Update(*order); err != nil {
		return errors.Wrap(err, "failed to update revealed order")
	}

	r.log.WithFields(logan.F{"order_id": orderID, "batch_id": order.BatchID}).
		Debug("order revealed")
	return nil
}

// Cancel withdraws an order. Matched orders, orders from superseded batches
// and orders whose batch is already PROCESSING cannot be cancelled.
func (r *Registry) Cancel(orderID int64, caller common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.orders.Get(orderID)
	if err != nil {
		return errors.Wrap(err, "failed to get order")
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Trader != caller {
		return ErrUnauthorized
	}
	if order.Status.Matched() {
		return ErrAlreadyMatched
	}
	if order.Status == data.StatusCancelled {
		return nil
	}

	cur, err := r.batches.Current()
	if err != nil {
		return errors.Wrap(err, "failed to get current batch")
	}
	if cur == nil || cur.ID != order.BatchID {
		return ErrInvalidPhase
	}
	if Phase(*cur, r.now()) == data.PhaseProcessing {
		return ErrInvalidPhase
	}

	order.Status = data.StatusCancelled
	if err = r.orders.Update(*order); err != nil {
		return errors.Wrap(err, "failed to update cancelled order")
	}

	r.log.WithFields(logan.F{"order_id": orderID, "batch_id": order.BatchID}).
		Debug("order cancelled")
	return nil
}

// RevealedForBatch returns the batch's revealed orders in submission order.
func (r *Registry) RevealedForBatch(batchID int64) ([]data.Order, error) {
	orders, err := r.orders.RevealedByBatch(batchID)
	return orders, errors.Wrap(err, "failed to list revealed orders")
}

// Order returns the order by id, or ErrOrderNotFound.
func (r *Registry) Order(orderID int64) (*data.Order, error) {
	order, err := r.orders.Get(orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order")
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
