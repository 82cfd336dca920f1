package tasks

import (
	"fmt"

	"github.com/desertthunder/seedmix/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ResolveSeeds Phase = iota
	FetchFeatures
	BuildProfile
	SearchCandidates
	SelectTracks
)

func (p Phase) String() string {
	switch p {
	case ResolveSeeds:
		return "resolve_seeds"
	case FetchFeatures:
		return "fetch_features"
	case BuildProfile:
		return "build_profile"
	case SearchCandidates:
		return "search_candidates"
	case SelectTracks:
		return "select_tracks"
	default:
		return ""
	}
}

func resolvingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSeeds,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d seed tracks...", total),
	}
}

func resolvedUpdate(step, total int, r models.Resolution) ProgressUpdate {
	if !r.Resolved() {
		return ProgressUpdate{
			Phase:   ResolveSeeds,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, r.Seed, r.Err),
			Data:    r,
		}
	}
	return ProgressUpdate{
		Phase:   ResolveSeeds,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s (%s %.2f)", step, total, r.Seed, r.Track.Candidate(), r.Track.Method, r.Track.Confidence),
		Data:    r,
	}
}

func featuresUpdate(step, total int, t models.ResolvedTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching audio features for %s - %s...", step, total, t.Title, t.Artist),
	}
}

func profileUpdate(profile models.AudioFeatureProfile) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildProfile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Target profile: tempo %.0f-%.0f BPM, energy %.2f-%.2f", profile.Tempo.Low, profile.Tempo.High, profile.Energy.Low, profile.Energy.High),
		Data:    profile,
	}
}

func searchingUpdate(target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCandidates,
		Total:   target,
		Message: fmt.Sprintf("Searching for candidates similar to the seeds (target %d)...", target),
	}
}

func candidatesUpdate(found, target int, degraded bool) ProgressUpdate {
	msg := fmt.Sprintf("Found %d candidates above the similarity threshold", found)
	if degraded {
		msg = "All providers failed; continuing with an empty candidate pool"
	}
	return ProgressUpdate{
		Phase:   SearchCandidates,
		Step:    found,
		Total:   target,
		Message: msg,
	}
}

func selectedUpdate(pl *models.Playlist, target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectTracks,
		Step:    pl.Len(),
		Total:   target,
		Message: fmt.Sprintf("Playlist created: %s (%d/%d tracks)", pl.Name, pl.Len(), target),
		Data:    pl,
	}
}
