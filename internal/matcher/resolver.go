// Package matcher resolves free-text seeds to catalog tracks through exact, normalized, partial and fuzzy search stages.
package matcher

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
)

// Searcher issues one query against every configured provider.
//
// [services.Pool] is the production implementation.
type Searcher interface {
	SearchAll(ctx context.Context, query string, limit int) services.Results
}

// Resolver binds seeds to catalog entries with the exact, normalized, partial and fuzzy stages.
//
// A Resolver holds only read-only configuration and is safe for concurrent use.
type Resolver struct {
	searcher   Searcher
	normalizer *normalize.Normalizer
	cfg        Config
	logger     *log.Logger
}

// NewResolver validates cfg and builds a resolver. A nil normalizer uses the default alias table.
func NewResolver(searcher Searcher, normalizer *normalize.Normalizer, cfg Config, logger *log.Logger) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if normalizer == nil {
		normalizer = normalize.New(normalize.DefaultAliasTable())
	}
	return &Resolver{
		searcher:   searcher,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     shared.WithLogger(logger, "component", "resolver"),
	}, nil
}

// Config returns the thresholds the resolver was built with.
func (r *Resolver) Config() Config {
	return r.cfg
}

// stage describes one resolution attempt.
type stage struct {
	method  models.MatchMethod
	queries []string
	limit   int
	accept  float64
	fold    func(string) string // applied to both sides before comparison
	floor   float64             // unweighted score below which candidates are dropped
}

// Resolve runs the stages in order and returns the first match that clears its stage.
//
// Failure is always an [*UnresolvedError]; provider failures only ever shrink a stage's candidate set.
func (r *Resolver) Resolve(ctx context.Context, seed models.SeedTrack) (*models.ResolvedTrack, error) {
	logger := r.logger.With("seed", seed.String())

	var best *models.Match
	for _, st := range r.stages(seed) {
		if err := ctx.Err(); err != nil {
			return nil, &UnresolvedError{Seed: seed, Best: best, Score: scoreOf(best), Reason: ReasonCanceled, Cause: err}
		}

		matches := r.search(ctx, seed, st)
		logger.Debug("stage searched", "method", st.method, "queries", len(st.queries), "candidates", len(matches))
		if len(matches) == 0 {
			continue
		}
		if best == nil || matches[0].Score > best.Score {
			top := matches[0]
			best = &top
		}

		matches = slices.DeleteFunc(matches, func(m models.Match) bool { return m.RawScore < st.floor })
		if len(matches) > 0 && matches[0].Score >= st.accept {
			alternatives := matches[1:min(len(matches), maxAlternatives+1)]
			track := models.NewResolvedTrack(seed, matches[0], st.method, r.cfg.ConfidenceThreshold, slices.Clone(alternatives))
			logger.Debug("seed resolved", "method", st.method, "track", track.String(), "confidence", track.Confidence)
			return track, nil
		}
	}

	reason := ReasonBelowThreshold
	if best == nil {
		reason = ReasonNoCandidates
	}
	if err := ctx.Err(); err != nil {
		return nil, &UnresolvedError{Seed: seed, Best: best, Score: scoreOf(best), Reason: ReasonCanceled, Cause: err}
	}
	logger.Debug("seed unresolved", "reason", reason, "best", scoreOf(best))
	return nil, &UnresolvedError{Seed: seed, Best: best, Score: scoreOf(best), Reason: reason}
}

func (r *Resolver) stages(seed models.SeedTrack) []stage {
	threshold := seed.EffectiveThreshold(r.cfg.ConfidenceThreshold)
	nt, na := normalize.Normalize(seed.Track), normalize.NormalizeArtist(seed.Artist)
	normalized := strings.TrimSpace(nt + " " + na)

	var partial []string
	for _, q := range r.normalizer.QueryVariations(seed.Track, seed.Artist) {
		if q == normalized {
			continue
		}
		partial = append(partial, q)
		if len(partial) == maxPartialQueries {
			break
		}
	}

	var fuzzy []string
	for _, q := range []string{nt, na} {
		if q != "" && !slices.Contains(fuzzy, q) {
			fuzzy = append(fuzzy, q)
		}
	}

	fuzzyAccept := fuzzyMinScore
	if seed.Threshold != nil {
		fuzzyAccept = *seed.Threshold
	}

	return []stage{
		{method: models.MethodExact, queries: []string{seed.Track + " " + seed.Artist}, limit: exactLimit, accept: max(exactMinScore, threshold), fold: normalize.Fold},
		{method: models.MethodNormalized, queries: []string{normalized}, limit: normalizedLimit, accept: max(normalizedMinScore, threshold), fold: normalize.Normalize},
		{method: models.MethodPartial, queries: partial, limit: partialLimit, accept: max(partialMinScore, threshold), fold: normalize.Normalize},
		{method: models.MethodFuzzy, queries: fuzzy, limit: fuzzyLimit, accept: fuzzyAccept, fold: normalize.Normalize, floor: r.cfg.FuzzyThreshold},
	}
}

// search runs the stage queries in order and returns the merged candidates ranked by [Compare].
//
// Remaining queries are skipped once a merged candidate clears the stage.
func (r *Resolver) search(ctx context.Context, seed models.SeedTrack, st stage) []models.Match {
	merged := make(map[string]models.Match)
	for _, q := range st.queries {
		if ctx.Err() != nil || accepted(merged, st) {
			break
		}
		results := r.searcher.SearchAll(ctx, q, r.cfg.limit(st.limit))
		if results.Failed() && len(results) > 0 {
			r.logger.Warn("every provider failed", "query", q, "err", results.Err())
		}
		for _, res := range results {
			for _, c := range res.Tracks {
				if c.Provider == "" {
					c.Provider = res.Provider
				}
				m := r.Score(seed, c, st.fold)
				m.Score = min(1, m.RawScore*res.Weight)
				m.ProviderRank = res.Rank
				key := DedupKey(c)
				if prev, ok := merged[key]; !ok || better(m, prev) {
					merged[key] = m
				}
			}
		}
	}

	matches := make([]models.Match, 0, len(merged))
	for _, m := range merged {
		matches = append(matches, m)
	}
	slices.SortFunc(matches, Compare)
	return matches
}

func accepted(merged map[string]models.Match, st stage) bool {
	for _, m := range merged {
		if m.Score >= st.accept && m.RawScore >= st.floor {
			return true
		}
	}
	return false
}

// Score compares a candidate to a seed after applying fold to both sides.
//
// The returned match has no provider weighting applied: Score equals RawScore.
func (r *Resolver) Score(seed models.SeedTrack, c models.CandidateTrack, fold func(string) string) models.Match {
	track := Composite(fold(seed.Track), fold(c.Title), r.cfg.EnablePhonetic)
	artist := ArtistSimilarity(fold(seed.Artist), fold(c.Artist), r.normalizer.Aliases(), r.cfg.EnablePhonetic)
	raw := trackWeight*track + artistWeight*artist
	return models.Match{
		Candidate:   c,
		Score:       raw,
		RawScore:    raw,
		TrackScore:  track,
		ArtistScore: artist,
	}
}

// ArtistSimilarity is the best composite similarity between b and a or any alias of a,
// plus a bonus when the two names are listed as aliases of one another.
func ArtistSimilarity(a, b string, aliases *normalize.AliasTable, phonetic bool) float64 {
	best := Composite(a, b, phonetic)
	for _, name := range aliases.Names(a) {
		best = max(best, Composite(name, normalize.NormalizeArtist(b), phonetic))
	}
	if aliases.Related(a, b) {
		best += aliasBonus
	}
	return min(1, best)
}

// DedupKey identifies a candidate across providers by normalized title and artist.
func DedupKey(c models.CandidateTrack) string {
	return normalize.Normalize(c.Title) + ":" + normalize.NormalizeArtist(c.Artist)
}

// Compare orders matches by score, then popularity, then provider rank, then ID.
func Compare(a, b models.Match) int {
	return cmp.Or(
		cmp.Compare(b.Score, a.Score),
		cmp.Compare(b.Candidate.Popularity, a.Candidate.Popularity),
		cmp.Compare(a.ProviderRank, b.ProviderRank),
		cmp.Compare(a.Candidate.ID, b.Candidate.ID),
	)
}

func better(a, b models.Match) bool {
	return Compare(a, b) < 0
}

func scoreOf(m *models.Match) float64 {
	if m == nil {
		return 0
	}
	return m.Score
}
