package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/seedmix/internal/matcher"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
)

type resolveJob struct {
	index int
	seed  models.SeedTrack
}

type resolveResult struct {
	index      int
	resolution models.Resolution
}

// ResolveSeeds resolves every seed on a bounded worker pool and returns one resolution per seed
// in input order.
//
// An unresolvable seed never fails the batch. When ctx is cancelled, workers stop taking seeds,
// seeds that never ran are recorded as canceled and ctx.Err() is returned with the results.
func (e *PlaylistEngine) ResolveSeeds(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	seeds []models.SeedTrack,
) ([]models.Resolution, models.ResolutionStats, error) {
	if e.resolver == nil {
		return nil, models.ResolutionStats{}, fmt.Errorf("%w: resolver not initialized", shared.ErrInvalidConfig)
	}

	total := len(seeds)
	out := make([]models.Resolution, total)
	done := make([]bool, total)
	e.sendProgress(progress, resolvingUpdate(total))

	jobs := make(chan resolveJob, total)
	results := make(chan resolveResult, total)

	var wg sync.WaitGroup
	for range min(e.workers, max(total, 1)) {
		wg.Add(1)
		go e.resolveWorker(ctx, &wg, jobs, results)
	}

	for i, seed := range seeds {
		jobs <- resolveJob{index: i, seed: seed}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		out[res.index] = res.resolution
		done[res.index] = true
		e.sendProgress(progress, resolvedUpdate(completed, total, res.resolution))
	}

	err := ctx.Err()
	for i := range out {
		if !done[i] {
			out[i] = models.Resolution{Seed: seeds[i], Err: matcher.NewCanceled(seeds[i], err)}
		}
	}

	stats := models.NewResolutionStats(out)
	e.logger.Info("seeds resolved",
		"total", stats.Total,
		"resolved", stats.Resolved,
		"unresolved", stats.Unresolved,
		"needs_confirmation", stats.NeedsConfirmation,
	)
	return out, stats, err
}

// resolveWorker is a worker goroutine that resolves seeds from the jobs channel.
func (e *PlaylistEngine) resolveWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan resolveJob,
	results chan<- resolveResult,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results <- resolveResult{index: job.index, resolution: e.resolveOne(ctx, job.seed)}
	}
}

// resolveOne checks the store, falls back to the resolver and records new resolutions.
func (e *PlaylistEngine) resolveOne(ctx context.Context, seed models.SeedTrack) models.Resolution {
	logger := e.logger.With("seed", seed.String())

	if e.store != nil {
		track, ok, err := e.store.GetResolution(ctx, seed)
		switch {
		case err != nil:
			logger.Warn("resolution cache read failed", "err", err)
		case ok:
			logger.Debug("resolution cache hit", "track", track.String())
			return models.Resolution{Seed: seed, Track: track}
		}
	}

	track, err := e.resolver.Resolve(ctx, seed)
	if err != nil {
		return models.Resolution{Seed: seed, Err: err}
	}

	if e.store != nil && !track.NeedsConfirmation {
		if err := e.store.PutResolution(ctx, track); err != nil {
			logger.Warn("resolution cache write failed", "err", err)
		}
	}
	return models.Resolution{Seed: seed, Track: track}
}
