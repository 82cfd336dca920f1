package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/desertthunder/seedmix/internal/similarity"
)

const (
	defaultWorkers = 4
	maxWorkers     = 16
)

// SeedResolver binds a seed to a catalog entry. [matcher.Resolver] implements it.
type SeedResolver interface {
	Resolve(ctx context.Context, seed models.SeedTrack) (*models.ResolvedTrack, error)
}

// CandidateSearcher finds tracks similar to a profile. [similarity.Engine] implements it.
type CandidateSearcher interface {
	SearchSimilar(ctx context.Context, profile models.AudioFeatureProfile, seeds []models.ResolvedTrack, targetCount int, cfg similarity.Config) (*similarity.Pool, error)
	FeaturesFor(ctx context.Context, c models.CandidateTrack) models.AudioFeatureVector
}

// ResolutionStore persists resolved seeds between runs. [repositories.ResolutionRepository] implements it.
type ResolutionStore interface {
	GetResolution(ctx context.Context, seed models.SeedTrack) (*models.ResolvedTrack, bool, error)
	PutResolution(ctx context.Context, track *models.ResolvedTrack) error
}

// EngineOptions configures a [PlaylistEngine].
type EngineOptions struct {
	Workers   int             // concurrent seed resolutions (default 4, max 16)
	Store     ResolutionStore // optional
	Providers []string        // recorded in playlist metadata
	Logger    *log.Logger
	Now       func() time.Time
}

// PlaylistEngine resolves seeds and generates playlists.
type PlaylistEngine struct {
	resolver  SeedResolver
	searcher  CandidateSearcher
	store     ResolutionStore
	workers   int
	providers []string
	logger    *log.Logger
	now       func() time.Time
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided collaborators.
func NewPlaylistEngine(resolver SeedResolver, searcher CandidateSearcher, opts EngineOptions) *PlaylistEngine {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PlaylistEngine{
		resolver:  resolver,
		searcher:  searcher,
		store:     opts.Store,
		workers:   min(opts.Workers, maxWorkers),
		providers: opts.Providers,
		logger:    shared.WithLogger(opts.Logger, "component", "engine"),
		now:       opts.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
