package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
)

// ProviderOptions configures a [Provider].
type ProviderOptions struct {
	Weight      float64       // ranking weight; zero uses [DefaultWeight]
	RateLimit   float64       // requests per second; zero disables limiting
	Burst       int           // limiter burst; defaults to 1
	MaxFailures uint32        // consecutive failures that open the breaker
	OpenTimeout time.Duration // how long the breaker stays open
	Logger      *log.Logger
}

// Provider wraps a [CatalogSearch] with a ranking weight, a request rate limiter and a circuit breaker.
//
// Errors returned by a Provider wrap [shared.ErrProviderTimeout] when the call ran out of time and
// [shared.ErrProviderUnavailable] when the breaker is open or the service is failing.
type Provider struct {
	source  CatalogSearch
	weight  float64
	rank    int
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]models.CandidateTrack]
	logger  *log.Logger
}

// NewProvider wraps source.
func NewProvider(source CatalogSearch, opts ProviderOptions) *Provider {
	if opts.Weight <= 0 {
		opts.Weight = DefaultWeight(source.Name())
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = defaultMaxFailures
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	logger := shared.WithLogger(opts.Logger, "provider", source.Name())

	p := &Provider{
		source:  source,
		weight:  opts.Weight,
		limiter: rate.NewLimiter(limit, opts.Burst),
		logger:  logger,
	}

	p.breaker = gobreaker.NewCircuitBreaker[[]models.CandidateTrack](gobreaker.Settings{
		Name:        source.Name(),
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, shared.ErrNotFound) ||
				errors.Is(err, shared.ErrFeaturesUnavailable) ||
				errors.Is(err, context.Canceled)
		},
	})
	return p
}

// Name returns the wrapped provider's name.
func (p *Provider) Name() string { return p.source.Name() }

// Weight returns the ranking weight.
func (p *Provider) Weight() float64 { return p.weight }

// Rank is the provider's position in the configured provider order.
func (p *Provider) Rank() int { return p.rank }

// State reports the circuit breaker state ("closed", "half-open" or "open").
func (p *Provider) State() string { return p.breaker.State().String() }

// Source returns the wrapped provider.
func (p *Provider) Source() CatalogSearch { return p.source }

// Search runs the wrapped search under the limiter and breaker.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	tracks, err := p.breaker.Execute(func() ([]models.CandidateTrack, error) {
		return p.source.Search(ctx, query, limit)
	})
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	return tracks, nil
}

// Features fetches audio features unless the breaker is open.
func (p *Provider) Features(ctx context.Context, trackID string) (models.AudioFeatureVector, error) {
	if p.breaker.State() == gobreaker.StateOpen {
		return models.AudioFeatureVector{}, p.classify(ctx, gobreaker.ErrOpenState)
	}
	if err := p.wait(ctx); err != nil {
		return models.AudioFeatureVector{}, err
	}
	v, err := p.source.Features(ctx, trackID)
	if err != nil {
		return models.AudioFeatureVector{}, p.classify(ctx, err)
	}
	return v.Clamped(), nil
}

// IsRelator reports whether the wrapped provider implements [ArtistRelator].
func (p *Provider) IsRelator() bool {
	_, ok := p.source.(ArtistRelator)
	return ok
}

// Related returns top tracks of artists similar to artist.
func (p *Provider) Related(ctx context.Context, artist string, artistLimit, trackLimit int) ([]models.CandidateTrack, error) {
	relator, ok := p.source.(ArtistRelator)
	if !ok {
		return nil, nil
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	tracks, err := p.breaker.Execute(func() ([]models.CandidateTrack, error) {
		names, err := relator.SimilarArtists(ctx, artist, artistLimit)
		if err != nil {
			return nil, err
		}
		var out []models.CandidateTrack
		for _, name := range names {
			if err := p.limiter.Wait(ctx); err != nil {
				return out, err
			}
			top, err := relator.TopTracks(ctx, name, trackLimit)
			if err != nil {
				p.logger.Debug("top tracks failed", "artist", name, "err", err)
				continue
			}
			out = append(out, top...)
		}
		return out, nil
	})
	if err != nil {
		return tracks, p.classify(ctx, err)
	}
	return tracks, nil
}

// wait blocks until the limiter admits a request or ctx cannot wait any longer.
func (p *Provider) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s: rate limit: %w", shared.ErrProviderTimeout, p.Name(), err)
	}
	return nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, shared.ErrProviderTimeout), errors.Is(err, shared.ErrProviderUnavailable):
		return fmt.Errorf("%s: %w", p.Name(), err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s circuit %s", shared.ErrProviderUnavailable, p.Name(), p.State())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", shared.ErrProviderTimeout, p.Name(), err)
	default:
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
}
