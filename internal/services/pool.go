package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/cache"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
	"github.com/desertthunder/seedmix/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCallTimeout   = 30 * time.Second
	defaultMaxConcurrent = 10
)

// PoolOptions configures a [Pool].
type PoolOptions struct {
	Timeout       time.Duration // per provider call
	MaxConcurrent int
	SearchCache   *cache.Cache[[]models.CandidateTrack]
	FeatureCache  *cache.Cache[models.AudioFeatureVector]
	Logger        *log.Logger
}

// Result is the outcome of one provider call.
type Result struct {
	Provider string
	Weight   float64
	Rank     int
	Tracks   []models.CandidateTrack
	Err      error
}

// Results holds one [Result] per provider in configured order.
type Results []Result

// Failed reports whether no provider answered, which includes having no providers.
func (rs Results) Failed() bool {
	for _, r := range rs {
		if r.Err == nil {
			return false
		}
	}
	return true
}

// Count is the total number of tracks returned.
func (rs Results) Count() int {
	n := 0
	for _, r := range rs {
		n += len(r.Tracks)
	}
	return n
}

// Err joins the errors of every failed call.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

// Pool fans queries out to a fixed set of providers with bounded concurrency and per-call timeouts.
//
// A call that times out or fails yields an empty [Result] carrying the error; it never fails the query.
// Cancelling the caller's context stops new calls from being issued, while calls already in
// flight run until they complete or reach their own timeout.
type Pool struct {
	providers []*Provider
	timeout   time.Duration
	limit     int
	search    *cache.Cache[[]models.CandidateTrack]
	features  *cache.Cache[models.AudioFeatureVector]
	logger    *log.Logger
}

// NewPool builds a pool over providers; their order defines each provider's rank.
func NewPool(providers []*Provider, opts PoolOptions) *Pool {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultCallTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	for i, p := range providers {
		p.rank = i
	}
	return &Pool{
		providers: providers,
		timeout:   opts.Timeout,
		limit:     opts.MaxConcurrent,
		search:    opts.SearchCache,
		features:  opts.FeatureCache,
		logger:    shared.WithLogger(opts.Logger, "component", "pool"),
	}
}

// Providers returns the pool's providers in rank order.
func (p *Pool) Providers() []*Provider {
	return p.providers
}

// Names returns the provider names in rank order.
func (p *Pool) Names() []string {
	names := make([]string, len(p.providers))
	for i, prov := range p.providers {
		names[i] = prov.Name()
	}
	return names
}

// Provider looks up a provider by name.
func (p *Pool) Provider(name string) (*Provider, bool) {
	for _, prov := range p.providers {
		if prov.Name() == name {
			return prov, true
		}
	}
	return nil, false
}

// SearchAll issues query against every provider and returns one result per provider.
func (p *Pool) SearchAll(ctx context.Context, query string, limit int) Results {
	return p.fanOut(ctx, p.providers, func(callCtx context.Context, prov *Provider) ([]models.CandidateTrack, error) {
		compute := func() ([]models.CandidateTrack, error) { return prov.Search(callCtx, query, limit) }
		if p.search == nil {
			return compute()
		}
		return p.search.GetOrCompute(callCtx, SearchKey(prov.Name(), query, limit), compute)
	})
}

// RelatedAll asks every [ArtistRelator] provider for top tracks of artists similar to each of artists.
func (p *Pool) RelatedAll(ctx context.Context, artists []string, artistLimit, trackLimit int) Results {
	var relators []*Provider
	for _, prov := range p.providers {
		if prov.IsRelator() {
			relators = append(relators, prov)
		}
	}
	if len(relators) == 0 || len(artists) == 0 {
		return nil
	}

	var out Results
	for _, artist := range artists {
		out = append(out, p.fanOut(ctx, relators, func(callCtx context.Context, prov *Provider) ([]models.CandidateTrack, error) {
			return prov.Related(callCtx, artist, artistLimit, trackLimit)
		})...)
	}
	return out
}

// Features returns the audio features of c from the provider that supplied it.
func (p *Pool) Features(ctx context.Context, c models.CandidateTrack) (models.AudioFeatureVector, error) {
	prov, ok := p.Provider(c.Provider)
	if !ok {
		return models.AudioFeatureVector{}, fmt.Errorf("%w: unknown provider %q", shared.ErrFeaturesUnavailable, c.Provider)
	}
	if err := ctx.Err(); err != nil {
		return models.AudioFeatureVector{}, err
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	compute := func() (models.AudioFeatureVector, error) { return prov.Features(callCtx, c.ID) }
	if p.features == nil {
		return compute()
	}
	return p.features.GetOrCompute(callCtx, prov.Name()+"|"+c.ID, compute)
}

// SearchKey is the cache key of a provider search.
func SearchKey(provider, query string, limit int) string {
	return provider + "|" + strconv.Itoa(limit) + "|" + normalize.Fold(query)
}

type callFunc func(ctx context.Context, prov *Provider) ([]models.CandidateTrack, error)

func (p *Pool) fanOut(ctx context.Context, providers []*Provider, call callFunc) Results {
	results := make(Results, len(providers))
	g := new(errgroup.Group)
	g.SetLimit(p.limit)

	for i, prov := range providers {
		results[i] = Result{Provider: prov.Name(), Weight: prov.Weight(), Rank: prov.Rank()}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
			defer cancel()

			tracks, err := call(callCtx, prov)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, shared.ErrProviderTimeout) {
					err = fmt.Errorf("%w: %s: %w", shared.ErrProviderTimeout, prov.Name(), err)
				}
				p.logger.Warn("provider call failed", "provider", prov.Name(), "err", err)
				results[i].Err = err
				return nil
			}
			results[i].Tracks = tracks
			return nil
		})
	}

	_ = g.Wait()
	return results
}
