package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/seedmix/internal/diversity"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/desertthunder/seedmix/internal/similarity"
)

// GeneratePlaylist builds a playlist of up to targetLength tracks from resolved seeds.
//
// Configuration is validated before any provider call. A playlist shorter than requested is
// flagged Short, and one built while every provider failed is flagged Degraded; neither is an error.
func (e *PlaylistEngine) GeneratePlaylist(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	resolved []models.ResolvedTrack,
	targetLength int,
	simCfg similarity.Config,
	settings diversity.Settings,
) (*models.Playlist, error) {
	if targetLength <= 0 {
		return nil, fmt.Errorf("%w: target length must be positive, got %d", shared.ErrInvalidConfig, targetLength)
	}
	if err := simCfg.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: similarity engine not initialized", shared.ErrInvalidConfig)
	}

	started := e.now()
	seeds := make([]models.ResolvedTrack, len(resolved))
	for i, t := range resolved {
		e.sendProgress(progress, featuresUpdate(i+1, len(resolved), t))
		if t.Features == nil {
			v := e.searcher.FeaturesFor(ctx, t.Candidate())
			t.Features = &v
		}
		seeds[i] = t
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profile := similarity.BuildProfile(seeds, simCfg.ProfileTolerance)
	e.sendProgress(progress, profileUpdate(profile))

	var preset []models.PlaylistTrack
	if settings.IncludeSeeds {
		for _, s := range seeds {
			preset = append(preset, seedEntry(s))
		}
	}

	e.sendProgress(progress, searchingUpdate(targetLength))
	pool, err := e.searcher.SearchSimilar(ctx, profile, seeds, targetLength, simCfg)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, candidatesUpdate(len(pool.Scores), targetLength, pool.Degraded))

	candidates := diversity.Apply(pool.Scores, profile, settings)
	tracks, err := diversity.Select(candidates, targetLength, settings, preset...)
	if err != nil {
		return nil, err
	}

	pl := &models.Playlist{
		ID:          shared.GenerateID(),
		Name:        PlaylistName(seeds),
		Description: PlaylistDescription(profile),
		Tracks:      tracks,
		Profile:     profile,
		Metadata: models.GenerationMetadata{
			GeneratedAt:     started,
			SeedCount:       len(seeds),
			RequestedLength: targetLength,
			PoolSize:        len(pool.Scores),
			Queries:         pool.Queries,
			Providers:       e.providers,
			Short:           len(tracks) < targetLength,
			Degraded:        pool.Degraded,
			Elapsed:         e.now().Sub(started),
		},
	}

	e.logger.Info("playlist generated",
		"name", pl.Name,
		"tracks", pl.Len(),
		"requested", targetLength,
		"pool", len(pool.Scores),
		"filtered", len(pool.Scores)-len(candidates),
		"degraded", pool.Degraded,
		"settings", settings.Describe(),
	)
	e.sendProgress(progress, selectedUpdate(pl, targetLength))
	return pl, nil
}

func seedEntry(s models.ResolvedTrack) models.PlaylistTrack {
	t := models.PlaylistTrack{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		Album:      s.Album,
		Year:       s.Year,
		Provider:   s.Provider,
		Popularity: s.Popularity,
		Similarity: 1,
		Adjusted:   1,
		Era:        diversity.EraBucket(s.Year),
		Seed:       true,
	}
	if s.Features != nil {
		t.Features = *s.Features
	}
	return t
}
