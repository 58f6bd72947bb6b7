package auction

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/nemointern/darkpool-svc/internal/data"
	"github.com/nemointern/darkpool-svc/internal/events"
	"github.com/nemointern/darkpool-svc/internal/settlement"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Orchestrator ties the batch clock to the matching engine. It dispatches a
// batch to matching at most once (tracked by a watermark over batch ids) and
// opens the successor batch before settlement runs, so a downstream outage
// never stalls the auction cadence.
type Orchestrator struct {
	log     *logan.Entry
	orders  data.Orders
	batches data.Batches
	engine  *Engine
	settler settlement.Settler
	hub     *events.Hub

	commitDuration time.Duration
	revealDuration time.Duration

	settleAttempts int
	settleBackoff  time.Duration

	mu        sync.Mutex
	watermark int64

	now func() time.Time
}

type OrchestratorOpts struct {
	Log     *logan.Entry
	Orders  data.Orders
	Batches data.Batches
	Engine  *Engine
	Settler settlement.Settler
	Hub     *events.Hub

	CommitDuration time.Duration
	RevealDuration time.Duration

	SettlementAttempts int
	SettlementBackoff  time.Duration
}

func NewOrchestrator(opts OrchestratorOpts) (*Orchestrator, error) {
	o := &Orchestrator{
		log:            opts.Log,
		orders:         opts.Orders,
		batches:        opts.Batches,
		engine:         opts.Engine,
		settler:        opts.Settler,
		hub:            opts.Hub,
		commitDuration: opts.CommitDuration,
		revealDuration: opts.RevealDuration,
		settleAttempts: opts.SettlementAttempts,
		settleBackoff:  opts.SettlementBackoff,
		now:            time.Now,
	}
	if o.settleAttempts < 1 {
		o.settleAttempts = 1
	}

	cur, err := o.batches.Current()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current batch")
	}
	if cur == nil {
		if err = o.openBatch(1); err != nil {
			return nil, errors.Wrap(err, "failed to open the first batch")
		}
	}
	return o, nil
}

// CurrentBatch returns the current batch together with its derived phase and
// the time remaining in that phase.
func (o *Orchestrator) CurrentBatch() (data.Batch, data.BatchPhase, time.Duration, error) {
	cur, err := o.batches.Current()
	if err != nil {
		return data.Batch{}, 0, 0, errors.Wrap(err, "failed to get current batch")
	}
	if cur == nil {
		return data.Batch{}, 0, 0, errors.New("no current batch exists")
	}
	now := o.now()
	return *cur, Phase(*cur, now), TimeRemaining(*cur, now), nil
}

// ProcessDue matches the current batch if it has entered PROCESSING and has
// not been dispatched yet. Safe to call concurrently and from a poll loop:
// callers observing an already-dispatched batch get a no-op.
func (o *Orchestrator) ProcessDue(ctx context.Context) error {
	o.mu.Lock()
	cur, err := o.batches.Current()
	if err != nil {
		o.mu.Unlock()
		return errors.Wrap(err, "failed to get current batch")
	}
	if cur == nil || Phase(*cur, o.now()) != data.PhaseProcessing || cur.ID <= o.watermark {
		o.mu.Unlock()
		return nil
	}

	o.watermark = cur.ID
	revealed, err := o.orders.RevealedByBatch(cur.ID)
	if err != nil {
		o.mu.Unlock()
		return errors.Wrap(err, "failed to snapshot revealed orders", logan.F{"batch_id": cur.ID})
	}
	// open the successor before any downstream call so the cadence never stalls
	if err = o.openBatch(cur.ID + 1); err != nil {
		o.mu.Unlock()
		return errors.Wrap(err, "failed to open next batch", logan.F{"batch_id": cur.ID + 1})
	}
	o.mu.Unlock()

	res := o.engine.Match(cur.ID, revealed)
	if err = o.applyFills(res); err != nil {
		o.log.WithError(err).WithField("batch_id", cur.ID).Error("failed to record fills")
	}

	evt := events.BatchProcessed{BatchID: cur.ID, Result: res, Settled: true}
	if len(res.Matches) > 0 {
		txHash, settleErr := o.settleWithRetry(ctx, res)
		if settleErr != nil {
			// the batch is still matched off-chain, the failure is surfaced separately
			o.log.WithError(settleErr).WithField("batch_id", cur.ID).
				Error("batch settlement failed")
			evt.Settled = false
			evt.SettlementError = settleErr.Error()
		}
		evt.SettlementTx = txHash
	}
	o.hub.Publish(evt)

	return nil
}

func (o *Orchestrator) openBatch(id int64) error {
	err := o.batches.Insert(data.Batch{
		ID:             id,
		StartTime:      o.now(),
		CommitDuration: o.commitDuration,
		RevealDuration: o.revealDuration,
	})
	if err != nil {
		return err
	}
	o.log.WithField("batch_id", id).Info("opened new batch")
	return nil
}

func (o *Orchestrator) applyFills(res data.BatchResult) error {
	for _, m := range res.Matches {
		for _, id := range []int64{m.BuyOrderID, m.SellOrderID} {
			order, err := o.orders.Get(id)
			if err != nil {
				return errors.Wrap(err, "failed to get matched order", logan.F{"order_id": id})
			}
			if order == nil {
				return errors.Errorf("matched order %d disappeared from the registry", id)
			}

			order.FilledAmount = new(big.Int).Set(m.MatchedAmount)
			if order.Amount != nil && order.FilledAmount.Cmp(order.Amount) == 0 {
				order.Status = data.StatusFullyExecuted
			} else {
				order.Status = data.StatusPartiallyFilled
			}
			if err = o.orders.Update(*order); err != nil {
				return errors.Wrap(err, "failed to update matched order", logan.F{"order_id": id})
			}
		}
	}
	return nil
}

func (o *Orchestrator) settleWithRetry(ctx context.Context, res data.BatchResult) (string, error) {
	backoff := o.settleBackoff
	var lastErr error

	for attempt := 1; attempt <= o.settleAttempts; attempt++ {
		txHash, err := o.settler.Settle(ctx, res)
		if err == nil {
			return txHash, nil
		}
		lastErr = err
		o.log.WithError(err).WithFields(logan.F{"batch_id": res.BatchID, "attempt": attempt}).
			Warn("settlement attempt failed")

		if attempt == o.settleAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", errors.Wrap(settlement.ErrSettlementFailed, ctx.Err().Error())
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return "", errors.Wrap(settlement.ErrSettlementFailed, lastErr.Error())
}
