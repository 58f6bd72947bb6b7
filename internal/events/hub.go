// Package events fans batch lifecycle notifications out to in-process
// subscribers, so downstream consumers (stats, archiving, brokers) never have
// to be known by the auction core.
package events

import (
	"sync"

	"github.com/nemointern/darkpool-svc/internal/data"
)

type BatchProcessed struct {
	BatchID         int64            `json:"batch_id"`
	Result          data.BatchResult `json:"result"`
	Settled         bool             `json:"settled"`
	SettlementTx    string           `json:"settlement_tx,omitempty"`
	SettlementError string           `json:"settlement_error,omitempty"`
}

type Hub struct {
	mu   sync.RWMutex
	subs []chan BatchProcessed
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(buffer int) <-chan BatchProcessed {
	ch := make(chan BatchProcessed, buffer)
	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()
	return ch
}

// Publish never blocks the publisher: a subscriber with a full buffer misses
// the event.
func (h *Hub) Publish(evt BatchProcessed) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
