package diversity

import (
	"slices"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
)

// Apply runs the filters enabled in settings over pool.
func Apply(pool []models.SimilarityScore, profile models.AudioFeatureProfile, settings Settings) []models.SimilarityScore {
	if settings.GenreStrict {
		pool = FilterGenres(pool, profile)
	}
	if settings.TempoTolerance > 0 {
		pool = FilterTempo(pool, profile, settings.TempoTolerance)
	}
	return pool
}

// FilterGenres drops candidates that share no genre with the profile. Candidates without genres,
// or any candidate when the profile has none, are kept.
func FilterGenres(pool []models.SimilarityScore, profile models.AudioFeatureProfile) []models.SimilarityScore {
	if len(profile.PreferredGenres) == 0 {
		return pool
	}
	return slices.DeleteFunc(slices.Clone(pool), func(s models.SimilarityScore) bool {
		if len(s.Candidate.Genres) == 0 {
			return false
		}
		return !slices.ContainsFunc(s.Candidate.Genres, func(g string) bool {
			return slices.Contains(profile.PreferredGenres, strings.ToLower(strings.TrimSpace(g)))
		})
	})
}

// FilterTempo drops candidates whose tempo lies outside the profile's tempo range widened by tolerance.
func FilterTempo(pool []models.SimilarityScore, profile models.AudioFeatureProfile, tolerance float64) []models.SimilarityScore {
	lo := profile.Tempo.Low * (1 - tolerance)
	hi := profile.Tempo.High * (1 + tolerance)
	if hi <= 0 {
		return pool
	}
	return slices.DeleteFunc(slices.Clone(pool), func(s models.SimilarityScore) bool {
		return s.Features.Tempo < lo || s.Features.Tempo > hi
	})
}
