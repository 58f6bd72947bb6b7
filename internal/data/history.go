package data

import (
	"database/sql"
	"time"
)

// BatchRecord is the archived form of a processed batch.
type BatchRecord struct {
	BatchID      int64          `structs:"batch_id" db:"batch_id"`
	TotalOrders  int            `structs:"total_orders" db:"total_orders"`
	TotalMatches int            `structs:"total_matches" db:"total_matches"`
	Settled      bool           `structs:"settled" db:"settled"`
	SettleTx     sql.NullString `structs:"settle_tx,omitempty,omitnested" db:"settle_tx"`
	ProcessedAt  time.Time      `structs:"processed_at" db:"processed_at"`
}

// MatchRecord stores fixed-point amounts as decimal strings, the way the
// ledger-side aggregator keeps them.
type MatchRecord struct {
	BatchID        int64     `structs:"batch_id" db:"batch_id"`
	BuyOrderID     int64     `structs:"buy_order_id" db:"buy_order_id"`
	SellOrderID    int64     `structs:"sell_order_id" db:"sell_order_id"`
	MatchedAmount  string    `structs:"matched_amount" db:"matched_amount"`
	ExecutionPrice string    `structs:"execution_price" db:"execution_price"`
	MatchedAt      time.Time `structs:"matched_at" db:"matched_at"`
}

type History interface {
	InsertBatch(BatchRecord) error
	InsertMatches([]MatchRecord) error
}
