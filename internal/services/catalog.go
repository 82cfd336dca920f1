// Static JSON catalog implementation of [CatalogSearch]
package services

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
	"github.com/desertthunder/seedmix/internal/shared"
)

// moodKeywords map the profile keywords used in similarity queries onto feature predicates.
var moodKeywords = map[string]func(models.AudioFeatureVector) bool{
	"happy":      func(v models.AudioFeatureVector) bool { return v.Valence > 0.6 },
	"upbeat":     func(v models.AudioFeatureVector) bool { return v.Valence > 0.6 },
	"positive":   func(v models.AudioFeatureVector) bool { return v.Valence > 0.6 },
	"sad":        func(v models.AudioFeatureVector) bool { return v.Valence < 0.4 },
	"melancholy": func(v models.AudioFeatureVector) bool { return v.Valence < 0.4 },
	"dark":       func(v models.AudioFeatureVector) bool { return v.Valence < 0.4 },
	"chill":      func(v models.AudioFeatureVector) bool { return v.Energy < 0.6 },
	"mellow":     func(v models.AudioFeatureVector) bool { return v.Energy < 0.6 },
	"energetic":  func(v models.AudioFeatureVector) bool { return v.Energy > 0.6 },
	"intense":    func(v models.AudioFeatureVector) bool { return v.Energy > 0.6 },
	"powerful":   func(v models.AudioFeatureVector) bool { return v.Energy > 0.6 },
	"calm":       func(v models.AudioFeatureVector) bool { return v.Energy < 0.4 },
	"peaceful":   func(v models.AudioFeatureVector) bool { return v.Energy < 0.4 },
	"ambient":    func(v models.AudioFeatureVector) bool { return v.Energy < 0.4 },
	"fast":       func(v models.AudioFeatureVector) bool { return v.Tempo > 130 },
	"uptempo":    func(v models.AudioFeatureVector) bool { return v.Tempo > 130 },
	"dance":      func(v models.AudioFeatureVector) bool { return v.Danceability > 0.6 },
	"slow":       func(v models.AudioFeatureVector) bool { return v.Tempo < 100 },
	"ballad":     func(v models.AudioFeatureVector) bool { return v.Tempo < 100 },
	"downtempo":  func(v models.AudioFeatureVector) bool { return v.Tempo < 100 },
}

// StaticCatalog serves searches from an in-memory track list, typically loaded from a JSON file.
type StaticCatalog struct {
	name   string
	tracks []models.CandidateTrack
	byID   map[string]int
}

// NewStaticCatalog creates a catalog over tracks. Tracks without a provider are attributed to name.
func NewStaticCatalog(name string, tracks []models.CandidateTrack) *StaticCatalog {
	if name == "" {
		name = ProviderCatalog
	}

	c := &StaticCatalog{name: name, byID: make(map[string]int, len(tracks))}
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		if t.Provider == "" {
			t.Provider = name
		}
		if t.Features != nil {
			v := t.Features.Clamped()
			t.Features = &v
		}
		c.byID[t.ID] = len(c.tracks)
		c.tracks = append(c.tracks, t)
	}
	return c
}

// LoadStaticCatalog reads a JSON array of candidate tracks from path.
func LoadStaticCatalog(name, path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var tracks []models.CandidateTrack
	if err := shared.UnmarshalJSON(data, &tracks); err != nil {
		return nil, fmt.Errorf("%w: invalid catalog file %s: %w", shared.ErrInvalidInput, path, err)
	}
	return NewStaticCatalog(name, tracks), nil
}

func (c *StaticCatalog) Name() string {
	return c.name
}

// Len is the number of tracks in the catalog.
func (c *StaticCatalog) Len() int {
	return len(c.tracks)
}

// Search ranks tracks by the share of query tokens found in their title, artist, album and genres.
//
// "genre:X" queries return tracks tagged X. Mood and tempo keywords match tracks whose
// features satisfy them.
func (c *StaticCatalog) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type hit struct {
		track models.CandidateTrack
		score float64
	}
	var hits []hit

	if genre, ok := strings.CutPrefix(query, "genre:"); ok {
		genre = normalize.Normalize(genre)
		for _, t := range c.tracks {
			if slices.ContainsFunc(t.Genres, func(g string) bool { return normalize.Normalize(g) == genre }) {
				hits = append(hits, hit{track: t, score: 1})
			}
		}
	} else {
		tokens := normalize.Tokens(query)
		if len(tokens) == 0 {
			return nil, nil
		}
		for _, t := range c.tracks {
			if s := matchTokens(t, tokens); s > 0 {
				hits = append(hits, hit{track: t, score: s})
			}
		}
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		if n := cmp.Compare(b.score, a.score); n != 0 {
			return n
		}
		return cmp.Compare(b.track.Popularity, a.track.Popularity)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]models.CandidateTrack, len(hits))
	for i, h := range hits {
		out[i] = h.track
	}
	return out, nil
}

// Features returns the stored feature vector of a track.
func (c *StaticCatalog) Features(ctx context.Context, trackID string) (models.AudioFeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return models.AudioFeatureVector{}, err
	}
	i, ok := c.byID[trackID]
	if !ok {
		return models.AudioFeatureVector{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}
	if c.tracks[i].Features == nil {
		return models.AudioFeatureVector{}, fmt.Errorf("%w: %s", shared.ErrFeaturesUnavailable, trackID)
	}
	return *c.tracks[i].Features, nil
}

func matchTokens(t models.CandidateTrack, tokens []string) float64 {
	fields := strings.Fields(normalize.Normalize(strings.Join(append([]string{t.Title, t.Artist, t.Album}, t.Genres...), " ")))
	have := make(map[string]bool, len(fields))
	for _, f := range fields {
		have[f] = true
	}

	var matched float64
	for _, tok := range tokens {
		switch {
		case have[tok]:
			matched++
		case moodKeywords[tok] != nil && t.Features != nil && moodKeywords[tok](*t.Features):
			matched++
		case sharesPrefix(tok, fields, 3):
			matched += 0.5
		}
	}
	return matched / float64(len(tokens))
}

// sharesPrefix reports whether tok and any field start with the same n bytes.
func sharesPrefix(tok string, fields []string, n int) bool {
	if len(tok) < n {
		return false
	}
	for _, f := range fields {
		if len(f) >= n && f[:n] == tok[:n] {
			return true
		}
	}
	return false
}
