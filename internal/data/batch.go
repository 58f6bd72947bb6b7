package data

import "time"

type BatchPhase uint8

const (
	PhaseCommit BatchPhase = iota
	PhaseReveal
	PhaseProcessing
)

func (p BatchPhase) String() string {
	switch p {
	case PhaseCommit:
		return "COMMIT"
	case PhaseReveal:
		return "REVEAL"
	}
	return "PROCESSING"
}

// Batch phase is never stored: it is recomputed from StartTime and the two
// durations on every query.
type Batch struct {
	ID             int64
	StartTime      time.Time
	CommitDuration time.Duration
	RevealDuration time.Duration
	OrderIDs       []int64
}

type Batches interface {
	Insert(Batch) error
	// Get returns nil without an error when no batch with such id exists.
	Get(id int64) (*Batch, error)
	// Current returns the batch with the highest id, or nil when none exist.
	Current() (*Batch, error)
	AttachOrder(batchID, orderID int64) error
}
