package data

import (
	"math/big"
	"time"
)

// Match is produced by the matching engine and is not mutated afterwards.
type Match struct {
	BuyOrderID     int64
	SellOrderID    int64
	MatchedAmount  *big.Int
	ExecutionPrice *big.Int
	Timestamp      time.Time
}

// BatchResult is the outcome of matching a single batch.
type BatchResult struct {
	BatchID         int64
	Matches         []Match
	TotalOrders     int
	TotalMatches    int
	ExecutionTimeMs int64
}
