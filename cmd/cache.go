package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type cacheCounts struct {
	Features    int64 `json:"features"`
	Resolutions int64 `json:"resolutions"`
}

// CacheStats reports the number of unexpired cached feature vectors and resolutions.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(r.loadConfig(cmd)); err != nil {
		return err
	}

	features, err := r.features.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count features: %w", err)
	}
	resolutions, err := r.resolutions.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count resolutions: %w", err)
	}

	counts := cacheCounts{Features: int64(features), Resolutions: int64(resolutions)}
	if cmd.Bool("json") {
		return r.writeJSON(counts, false)
	}
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Feature vectors: %d\n", counts.Features)
	return r.writePlain("Resolutions: %d\n", counts.Resolutions)
}

// CacheClear deletes every cached entry.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	return r.sweepCache(ctx, cmd, "cleared", func(ctx context.Context) (cacheCounts, error) {
		features, err := r.features.Clear(ctx)
		if err != nil {
			return cacheCounts{}, fmt.Errorf("failed to clear features: %w", err)
		}
		resolutions, err := r.resolutions.Clear(ctx)
		if err != nil {
			return cacheCounts{}, fmt.Errorf("failed to clear resolutions: %w", err)
		}
		return cacheCounts{Features: features, Resolutions: resolutions}, nil
	})
}

// CachePurge deletes expired entries.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	return r.sweepCache(ctx, cmd, "purged", func(ctx context.Context) (cacheCounts, error) {
		features, err := r.features.Purge(ctx)
		if err != nil {
			return cacheCounts{}, fmt.Errorf("failed to purge features: %w", err)
		}
		resolutions, err := r.resolutions.Purge(ctx)
		if err != nil {
			return cacheCounts{}, fmt.Errorf("failed to purge resolutions: %w", err)
		}
		return cacheCounts{Features: features, Resolutions: resolutions}, nil
	})
}

func (r *Runner) sweepCache(ctx context.Context, cmd *cli.Command, verb string, sweep func(context.Context) (cacheCounts, error)) error {
	if err := r.openDatabase(r.loadConfig(cmd)); err != nil {
		return err
	}

	counts, err := sweep(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("cache "+verb, "features", counts.Features, "resolutions", counts.Resolutions)

	if cmd.Bool("json") {
		return r.writeJSON(counts, false)
	}
	return r.writePlain("✓ %s %d feature vectors and %d resolutions\n", verb, counts.Features, counts.Resolutions)
}
