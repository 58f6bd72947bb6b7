package auction

import (
	"time"

	"github.com/nemointern/darkpool-svc/internal/data"
)

// Phase derives the batch phase from wall-clock time. It is a pure function:
// once elapsed time exceeds both windows the batch stays in PROCESSING until
// the orchestrator opens a successor.
func Phase(b data.Batch, now time.Time) data.BatchPhase {
	elapsed := now.Sub(b.StartTime)
	switch {
	case elapsed < b.CommitDuration:
		return data.PhaseCommit
	case elapsed < b.CommitDuration+b.RevealDuration:
		return data.PhaseReveal
	default:
		return data.PhaseProcessing
	}
}

// TimeRemaining reports how long the current phase lasts; zero during
// PROCESSING.
func TimeRemaining(b data.Batch, now time.Time) time.Duration {
	elapsed := now.Sub(b.StartTime)
	switch {
	case elapsed < b.CommitDuration:
		return b.CommitDuration - elapsed
	case elapsed < b.CommitDuration+b.RevealDuration:
		return b.CommitDuration + b.RevealDuration - elapsed
	default:
		return 0
	}
}
