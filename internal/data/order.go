package data

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type OrderSide uint8

const (
	SideBuy OrderSide = iota
	SideSell
)

func (s OrderSide) String() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

type OrderStatus uint8

const (
	StatusCommitted OrderStatus = iota
	StatusRevealed
	StatusMatched
	StatusPartiallyFilled
	StatusFullyExecuted
	StatusCancelled
	StatusFailed
)

func (s OrderStatus) String() string {
	switch s {
	case StatusCommitted:
		return "COMMITTED"
	case StatusRevealed:
		return "REVEALED"
	case StatusMatched:
		return "MATCHED"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFullyExecuted:
		return "FULLY_EXECUTED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Matched reports whether the order has been consumed by the matching engine
// in any form and therefore can no longer be cancelled.
func (s OrderStatus) Matched() bool {
	return s == StatusMatched || s == StatusPartiallyFilled || s == StatusFullyExecuted
}

// Order is a dark pool order. Amount, Price and Salt stay nil/empty until the
// trader reveals them; only CommitHash is public during the commit phase.
type Order struct {
	ID         int64
	Trader     common.Address
	TokenA     string
	TokenB     string
	Side       OrderSide
	BatchID    int64
	CommitHash common.Hash
	Status     OrderStatus

	Amount *big.Int
	Price  *big.Int
	Salt   string

	FilledAmount *big.Int

	CreatedAt  time.Time
	RevealedAt time.Time
}

type Orders interface {
	// Insert stores the order and assigns a fresh monotonically increasing id.
	Insert(Order) (int64, error)
	// Get returns nil without an error when no order with such id exists.
	Get(id int64) (*Order, error)
	Update(Order) error
	ByBatch(batchID int64) ([]Order, error)
	RevealedByBatch(batchID int64) ([]Order, error)
}
