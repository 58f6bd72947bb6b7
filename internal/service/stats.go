package service

import (
	"context"
	"database/sql"
	"math/big"
	"sync"
	"time"

	"github.com/nemointern/darkpool-svc/internal/data"
	"github.com/nemointern/darkpool-svc/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gitlab.com/distributed_lab/logan/v3"
)

var (
	batchesProcessedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "darkpool_batches_processed_total",
		Help: "Batches that went through matching.",
	})
	matchesProducedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "darkpool_matches_total",
		Help: "Matches produced by the engine.",
	})
	settlementFailuresCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "darkpool_settlement_failures_total",
		Help: "Batches whose settlement exhausted all attempts.",
	})
)

// MatchingStats is a point-in-time snapshot of everything processed since the
// service started.
type MatchingStats struct {
	TotalBatches       int64     `json:"total_batches"`
	TotalOrders        int64     `json:"total_orders"`
	TotalMatches       int64     `json:"total_matches"`
	SettlementFailures int64     `json:"settlement_failures"`
	TotalVolume        string    `json:"total_volume"`
	LastBatchID        int64     `json:"last_batch_id"`
	LastProcessedAt    time.Time `json:"last_processed_at"`
}

type statsCollector struct {
	log     *logan.Entry
	history data.History

	mu                 sync.RWMutex
	totalBatches       int64
	totalOrders        int64
	totalMatches       int64
	settlementFailures int64
	totalVolume        *big.Int
	lastBatchID        int64
	lastProcessedAt    time.Time
}

func newStatsCollector(log *logan.Entry, history data.History) *statsCollector {
	return &statsCollector{
		log:         log,
		history:     history,
		totalVolume: new(big.Int),
	}
}

func (c *statsCollector) consume(ctx context.Context, sub <-chan events.BatchProcessed) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub:
			if !ok {
				return
			}
			c.record(evt)
		}
	}
}

func (c *statsCollector) record(evt events.BatchProcessed) {
	c.mu.Lock()
	c.totalBatches++
	c.totalOrders += int64(evt.Result.TotalOrders)
	c.totalMatches += int64(evt.Result.TotalMatches)
	if !evt.Settled {
		c.settlementFailures++
	}
	for _, m := range evt.Result.Matches {
		c.totalVolume.Add(c.totalVolume, m.MatchedAmount)
	}
	c.lastBatchID = evt.BatchID
	c.lastProcessedAt = time.Now()
	c.mu.Unlock()

	batchesProcessedCounter.Inc()
	matchesProducedCounter.Add(float64(evt.Result.TotalMatches))
	if !evt.Settled {
		settlementFailuresCounter.Inc()
	}

	c.archive(evt)
}

func (c *statsCollector) archive(evt events.BatchProcessed) {
	err := c.history.InsertBatch(data.BatchRecord{
		BatchID:      evt.BatchID,
		TotalOrders:  evt.Result.TotalOrders,
		TotalMatches: evt.Result.TotalMatches,
		Settled:      evt.Settled,
		SettleTx:     sql.NullString{String: evt.SettlementTx, Valid: evt.SettlementTx != ""},
		ProcessedAt:  time.Now().UTC(),
	})
	if err != nil {
		c.log.WithError(err).WithField("batch_id", evt.BatchID).Error("failed to archive batch")
		return
	}

	if len(evt.Result.Matches) == 0 {
		return
	}
	records := make([]data.MatchRecord, 0, len(evt.Result.Matches))
	for _, m := range evt.Result.Matches {
		records = append(records, data.MatchRecord{
			BatchID:        evt.BatchID,
			BuyOrderID:     m.BuyOrderID,
			SellOrderID:    m.SellOrderID,
			MatchedAmount:  m.MatchedAmount.String(),
			ExecutionPrice: m.ExecutionPrice.String(),
			MatchedAt:      m.Timestamp,
		})
	}
	if err = c.history.InsertMatches(records); err != nil {
		c.log.WithError(err).WithField("batch_id", evt.BatchID).Error("failed to archive matches")
	}
}

func (c *statsCollector) Stats() MatchingStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return MatchingStats{
		TotalBatches:       c.totalBatches,
		TotalOrders:        c.totalOrders,
		TotalMatches:       c.totalMatches,
		SettlementFailures: c.settlementFailures,
		TotalVolume:        c.totalVolume.String(),
		LastBatchID:        c.lastBatchID,
		LastProcessedAt:    c.lastProcessedAt,
	}
}
