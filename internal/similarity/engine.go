// Package similarity builds audio feature profiles from seeds and ranks candidate tracks against them.
package similarity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrentQueries  = 4
	maxConcurrentFeatures = 8
)

// Source is the candidate-source collaborator. [services.Pool] implements it.
type Source interface {
	SearchAll(ctx context.Context, query string, limit int) services.Results
	RelatedAll(ctx context.Context, artists []string, artistLimit, trackLimit int) services.Results
	Features(ctx context.Context, c models.CandidateTrack) (models.AudioFeatureVector, error)
}

// FeatureStore persists provider feature vectors between runs.
type FeatureStore interface {
	GetFeatures(ctx context.Context, provider, trackID string) (models.AudioFeatureVector, bool, error)
	PutFeatures(ctx context.Context, provider, trackID string, v models.AudioFeatureVector) error
}

// Pool is the ranked outcome of a similarity search.
type Pool struct {
	Scores     []models.SimilarityScore
	Queries    []string
	Candidates int  // distinct candidates scored before the threshold cut
	Degraded   bool // every source call failed
}

// Engine searches a [Source] for tracks that fit a feature profile.
type Engine struct {
	source Source
	store  FeatureStore
	logger *log.Logger
}

// NewEngine builds an engine. store may be nil.
func NewEngine(source Source, store FeatureStore, logger *log.Logger) *Engine {
	return &Engine{
		source: source,
		store:  store,
		logger: shared.WithLogger(logger, "component", "similarity"),
	}
}

// SearchSimilar queries the source with queries generated from profile, scores every distinct
// candidate and returns those at or above the minimum threshold, best first.
//
// The configuration is validated before any source call. Seeds never appear in the pool.
// When every call fails the pool is empty and Degraded is set; that is not an error.
func (e *Engine) SearchSimilar(ctx context.Context, profile models.AudioFeatureProfile, seeds []models.ResolvedTrack, targetCount int, cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if targetCount <= 0 {
		return nil, fmt.Errorf("%w: target count must be positive, got %d", shared.ErrInvalidConfig, targetCount)
	}

	queries := GenerateQueries(profile)
	limit := targetCount * cfg.TargetCountMultiplier
	if cfg.MaxResultsPerQuery > 0 {
		limit = min(limit, cfg.MaxResultsPerQuery)
	}

	batches, degraded := e.collect(ctx, queries, profile.SeedArtists, limit, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := dedupe(batches, seeds)
	e.logger.Debug("candidates collected", "queries", len(queries), "candidates", len(candidates), "degraded", degraded)

	scores, err := e.score(ctx, profile, candidates, cfg)
	if err != nil {
		return nil, err
	}

	pool := &Pool{Queries: queries, Candidates: len(candidates), Degraded: degraded}
	for _, s := range scores {
		if s.Score >= cfg.MinSimilarityThreshold {
			pool.Scores = append(pool.Scores, s)
		}
	}
	slices.SortFunc(pool.Scores, CompareScores)
	return pool, nil
}

// collect runs every query and the related-artist expansion, returning results in a stable order.
func (e *Engine) collect(ctx context.Context, queries, artists []string, limit int, cfg Config) ([]services.Results, bool) {
	batches := make([]services.Results, len(queries), len(queries)+1)
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentQueries)
	for i, q := range queries {
		g.Go(func() error {
			batches[i] = e.source.SearchAll(ctx, q, limit)
			return nil
		})
	}
	_ = g.Wait()

	degraded := true
	for _, rs := range batches {
		if !rs.Failed() {
			degraded = false
		}
	}

	if cfg.RelatedArtists > 0 && len(artists) > 0 {
		related := e.source.RelatedAll(ctx, artists, cfg.RelatedArtists, cfg.RelatedTracks)
		if len(related) > 0 && !related.Failed() {
			degraded = false
		}
		batches = append(batches, related)
	}
	return batches, degraded
}

type candidate struct {
	track models.CandidateTrack
	rank  int
}

// dedupe flattens batches keeping the first occurrence of each catalog ID and each
// title and artist pair, dropping seeds.
func dedupe(batches []services.Results, seeds []models.ResolvedTrack) []candidate {
	seenID := make(map[string]bool)
	seenKey := make(map[string]bool)
	for _, s := range seeds {
		seenID[s.Provider+"|"+s.ID] = true
		seenKey[trackKey(s.Title, s.Artist)] = true
	}

	var out []candidate
	for _, rs := range batches {
		for _, r := range rs {
			for _, t := range r.Tracks {
				if t.Provider == "" {
					t.Provider = r.Provider
				}
				id, key := t.Provider+"|"+t.ID, trackKey(t.Title, t.Artist)
				if t.ID == "" || seenID[id] || seenKey[key] {
					continue
				}
				seenID[id], seenKey[key] = true, true
				out = append(out, candidate{track: t, rank: r.Rank})
			}
		}
	}
	return out
}

func trackKey(title, artist string) string {
	return normalize.Normalize(title) + ":" + normalize.NormalizeArtist(artist)
}

func (e *Engine) score(ctx context.Context, profile models.AudioFeatureProfile, candidates []candidate, cfg Config) ([]models.SimilarityScore, error) {
	scores := make([]models.SimilarityScore, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeatures)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := e.FeaturesFor(gctx, c.track)
			score, breakdown := Score(profile, v, cfg.Weights)
			scores[i] = models.SimilarityScore{
				Candidate:    c.track,
				Features:     v,
				Score:        score,
				Breakdown:    breakdown,
				Preferred:    score >= cfg.PreferredSimilarityThreshold,
				ProviderRank: c.rank,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// FeaturesFor returns the features of c from the candidate itself, the feature store, or the
// source, falling back to [Estimate]. It never fails.
func (e *Engine) FeaturesFor(ctx context.Context, c models.CandidateTrack) models.AudioFeatureVector {
	if c.Features != nil {
		return c.Features.Clamped()
	}

	if e.store != nil {
		v, ok, err := e.store.GetFeatures(ctx, c.Provider, c.ID)
		if err != nil {
			e.logger.Warn("feature store read failed", "provider", c.Provider, "id", c.ID, "err", err)
		} else if ok {
			return v.Clamped()
		}
	}

	v, err := e.source.Features(ctx, c)
	if err != nil {
		if !errors.Is(err, shared.ErrFeaturesUnavailable) {
			e.logger.Debug("features unavailable", "provider", c.Provider, "id", c.ID, "err", err)
		}
		return Estimate(c)
	}

	v = v.Clamped()
	if e.store != nil {
		if err := e.store.PutFeatures(ctx, c.Provider, c.ID, v); err != nil {
			e.logger.Warn("feature store write failed", "provider", c.Provider, "id", c.ID, "err", err)
		}
	}
	return v
}

// CompareScores orders by score, then popularity, then provider rank, then ID.
func CompareScores(a, b models.SimilarityScore) int {
	return cmp.Or(
		cmp.Compare(b.Score, a.Score),
		cmp.Compare(b.Candidate.Popularity, a.Candidate.Popularity),
		cmp.Compare(a.ProviderRank, b.ProviderRank),
		cmp.Compare(a.Candidate.ID, b.Candidate.ID),
	)
}
