package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/seedmix/internal/formatter"
	"github.com/desertthunder/seedmix/internal/matcher"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/desertthunder/seedmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

type resolutionView struct {
	Seed   models.SeedTrack      `json:"seed"`
	Track  *models.ResolvedTrack `json:"track,omitempty"`
	Reason string                `json:"reason,omitempty"`
	Best   *models.Match         `json:"best,omitempty"`
}

type resolveOutput struct {
	Resolutions []resolutionView       `json:"resolutions"`
	Stats       models.ResolutionStats `json:"stats"`
}

// Resolve binds each seed to a catalog entry and prints a report.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	seeds, err := r.readSeeds(cmd)
	if err != nil {
		return err
	}

	engine, err := r.playlistEngine(ctx, cmd)
	if err != nil {
		return err
	}

	resolutions, stats, err := r.resolve(ctx, engine, seeds)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(newResolveOutput(resolutions, stats), cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.ResolutionReport(resolutions, stats))
}

// readSeeds collects seeds from positional arguments and the --file CSV.
//
// Invalid CSV rows are logged and skipped.
func (r *Runner) readSeeds(cmd *cli.Command) ([]models.SeedTrack, error) {
	var seeds []models.SeedTrack
	for _, arg := range cmd.Args().Slice() {
		seed, err := models.ParseSeedTrack(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", arg, err)
		}
		seeds = append(seeds, seed)
	}

	if path := cmd.String("file"); path != "" {
		fromFile, err := formatter.ReadSeedsFile(path)
		if err != nil {
			if len(fromFile) == 0 {
				return nil, err
			}
			r.logger.Warn("skipped invalid seed rows", "file", path, "err", err)
		}
		seeds = append(seeds, fromFile...)
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: provide seeds as arguments or with --file", shared.ErrMissingArgument)
	}

	if cmd.IsSet("threshold") {
		threshold := cmd.Float("threshold")
		if threshold < 0 || threshold > 1 {
			return nil, fmt.Errorf("%w: threshold %.2f outside [0,1]", shared.ErrInvalidArgument, threshold)
		}
		for i := range seeds {
			if seeds[i].Threshold == nil {
				seeds[i].Threshold = &threshold
			}
		}
	}
	return seeds, nil
}

// resolve runs the batch while logging progress.
func (r *Runner) resolve(ctx context.Context, engine *tasks.PlaylistEngine, seeds []models.SeedTrack) ([]models.Resolution, models.ResolutionStats, error) {
	progress := make(chan tasks.ProgressUpdate, len(seeds)+1)
	done := make(chan struct{})
	go r.logProgress(progress, done)

	resolutions, stats, err := engine.ResolveSeeds(ctx, progress, seeds)
	close(progress)
	<-done
	return resolutions, stats, err
}

func newResolveOutput(resolutions []models.Resolution, stats models.ResolutionStats) resolveOutput {
	out := resolveOutput{Resolutions: make([]resolutionView, len(resolutions)), Stats: stats}
	for i, res := range resolutions {
		view := resolutionView{Seed: res.Seed, Track: res.Track}
		var ue *matcher.UnresolvedError
		switch {
		case errors.As(res.Err, &ue):
			view.Reason, view.Best = ue.Reason, ue.Best
		case res.Err != nil:
			view.Reason = res.Err.Error()
		}
		out.Resolutions[i] = view
	}
	return out
}
