// Package settlement records matched batches on the ledger. A settlement
// failure never invalidates the match: the caller logs it, surfaces it
// separately and moves on to the next batch.
package settlement

import (
	"context"

	"github.com/nemointern/darkpool-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// ErrSettlementFailed marks a downstream-only failure: the batch is still
// considered matched off-chain.
var ErrSettlementFailed = errors.New("settlement failed")

type Settler interface {
	// Settle submits the batch result to the ledger and returns a transaction
	// identifier.
	Settle(ctx context.Context, res data.BatchResult) (string, error)
}
