package auction

import "gitlab.com/distributed_lab/logan/v3/errors"

// Contract-level failures are returned as bare sentinels so callers can
// branch on the violated invariant instead of parsing messages. Internal
// failures are wrapped the usual way.
var (
	ErrInvalidPhase       = errors.New("operation is not allowed in the current batch phase")
	ErrCommitmentMismatch = errors.New("revealed values do not match the order commitment")
	ErrNotOrderOwner      = errors.New("caller is not the order owner")
	ErrUnauthorized       = errors.New("caller is not authorized to cancel the order")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAlreadyRevealed    = errors.New("order is already revealed")
	ErrAlreadyMatched     = errors.New("order is already matched and cannot be cancelled")
)
