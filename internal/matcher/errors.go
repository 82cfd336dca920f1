package matcher

import (
	"fmt"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
)

// Reasons carried by [UnresolvedError].
const (
	ReasonNoCandidates   = "no candidates"
	ReasonBelowThreshold = "below threshold"
	ReasonCanceled       = "canceled"
)

// UnresolvedError reports a seed that no stage could bind to a catalog entry.
//
// Best is the highest scoring candidate seen across all stages, or nil when no provider
// returned anything.
type UnresolvedError struct {
	Seed   models.SeedTrack
	Best   *models.Match
	Score  float64
	Reason string
	Cause  error
}

func (e *UnresolvedError) Error() string {
	if e.Best == nil {
		return fmt.Sprintf("unresolved %q: %s", e.Seed.String(), e.Reason)
	}
	return fmt.Sprintf("unresolved %q: %s (best %q at %.2f)", e.Seed.String(), e.Reason, e.Best.Candidate.String(), e.Score)
}

// Is matches [shared.ErrUnresolved].
func (e *UnresolvedError) Is(target error) bool {
	return target == shared.ErrUnresolved
}

func (e *UnresolvedError) Unwrap() error {
	return e.Cause
}

// NewCanceled builds the failure recorded for a seed whose resolution never ran.
func NewCanceled(seed models.SeedTrack, cause error) *UnresolvedError {
	return &UnresolvedError{Seed: seed, Reason: ReasonCanceled, Cause: cause}
}
