// Package diversity picks a fixed-size playlist from a ranked similarity pool while
// capping tracks per artist, penalizing near-duplicates and balancing release eras.
package diversity

import (
	"fmt"
	"math"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
	"github.com/desertthunder/seedmix/internal/shared"
)

// selection tracks the running state of one greedy pass.
type selection struct {
	settings Settings
	targets  map[string]int
	artists  map[string]int
	eras     map[string]int
	chosen   []models.PlaylistTrack
}

// Select greedily fills a playlist of up to targetLength tracks from pool.
//
// Preset tracks are placed first, even past MaxPerArtist, and count toward every constraint.
// Each round accepts the candidate with the highest adjusted score:
//
//	similarity - factor x max similarity to a chosen track - era penalty + bias x popularity/100
//
// Candidates whose artist already holds MaxPerArtist slots are skipped. A shorter result means
// the pool ran out; it is not an error.
func Select(pool []models.SimilarityScore, targetLength int, settings Settings, preset ...models.PlaylistTrack) ([]models.PlaylistTrack, error) {
	if targetLength <= 0 {
		return nil, fmt.Errorf("%w: target length must be positive, got %d", shared.ErrInvalidConfig, targetLength)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	sel := &selection{
		settings: settings,
		targets:  settings.eraTargets(targetLength),
		artists:  make(map[string]int),
		eras:     make(map[string]int),
	}
	for _, t := range preset {
		if len(sel.chosen) == targetLength {
			break
		}
		sel.add(t)
	}

	used := make([]bool, len(pool))
	for len(sel.chosen) < targetLength {
		best, bestScore := -1, math.Inf(-1)
		for i, s := range pool {
			if used[i] || !sel.allows(s.Candidate.Artist) {
				continue
			}
			if adj := sel.adjusted(s); adj > bestScore {
				best, bestScore = i, adj
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		sel.add(NewPlaylistTrack(pool[best], bestScore))
	}

	for i := range sel.chosen {
		sel.chosen[i].Position = i + 1
	}
	return sel.chosen, nil
}

// NewPlaylistTrack converts a scored candidate into a playlist entry.
func NewPlaylistTrack(s models.SimilarityScore, adjusted float64) models.PlaylistTrack {
	c := s.Candidate
	return models.PlaylistTrack{
		ID:         c.ID,
		Title:      c.Title,
		Artist:     c.Artist,
		Album:      c.Album,
		Year:       c.Year,
		Provider:   c.Provider,
		Popularity: c.Popularity,
		Similarity: s.Score,
		Adjusted:   adjusted,
		Era:        EraBucket(c.Year),
		Features:   s.Features,
	}
}

func (sel *selection) allows(artist string) bool {
	return sel.artists[normalize.NormalizeArtist(artist)] < sel.settings.MaxPerArtist
}

func (sel *selection) adjusted(s models.SimilarityScore) float64 {
	score := s.Score

	var nearest float64
	for _, t := range sel.chosen {
		nearest = max(nearest, s.Features.Similarity(t.Features))
	}
	score -= sel.settings.FeatureDiversityFactor * nearest

	if era := EraBucket(s.Candidate.Year); era != EraUnknown && sel.eras[era] >= sel.targets[era] {
		score -= sel.settings.EraPenalty
	}

	pop := min(max(s.Candidate.Popularity, 0), 100)
	return score + sel.settings.PopularityBias*float64(pop)/100
}

func (sel *selection) add(t models.PlaylistTrack) {
	if t.Era == "" {
		t.Era = EraBucket(t.Year)
	}
	sel.artists[normalize.NormalizeArtist(t.Artist)]++
	sel.eras[t.Era]++
	sel.chosen = append(sel.chosen, t)
}
