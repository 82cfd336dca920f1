package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/seedmix/internal/diversity"
	"github.com/desertthunder/seedmix/internal/formatter"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/desertthunder/seedmix/internal/similarity"
	"github.com/desertthunder/seedmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate resolves the seeds and writes a playlist of similar tracks.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	seeds, err := r.readSeeds(cmd)
	if err != nil {
		return err
	}

	engine, err := r.playlistEngine(ctx, cmd)
	if err != nil {
		return err
	}
	config := r.loadConfig(cmd)

	simCfg := similarity.ConfigFromShared(config.Similarity)
	settings := diversity.SettingsFromShared(config.Diversity)
	if cmd.IsSet("include-seeds") {
		settings.IncludeSeeds = cmd.Bool("include-seeds")
	}
	if cmd.IsSet("max-per-artist") {
		settings.MaxPerArtist = int(cmd.Int("max-per-artist"))
	}
	if cmd.IsSet("genre-strict") {
		settings.GenreStrict = cmd.Bool("genre-strict")
	}

	resolutions, stats, err := r.resolve(ctx, engine, seeds)
	if err != nil {
		return err
	}
	for _, res := range resolutions {
		switch {
		case !res.Resolved():
			r.logger.Warn("seed skipped", "seed", res.Seed.String(), "err", res.Err)
		case res.Track.NeedsConfirmation:
			r.logger.Warn("low confidence match used", "seed", res.Seed.String(), "track", res.Track.String())
		}
	}

	resolved := models.ResolvedTracks(resolutions)
	if len(resolved) == 0 {
		return fmt.Errorf("%w: none of %d seeds resolved", shared.ErrUnresolved, stats.Total)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go r.logProgress(progress, done)
	pl, err := engine.GeneratePlaylist(ctx, progress, resolved, int(cmd.Int("length")), simCfg, settings)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	return r.writePlaylist(cmd, pl)
}

// writePlaylist prints a summary, prints an export or writes an export to --output.
func (r *Runner) writePlaylist(cmd *cli.Command, pl *models.Playlist) error {
	output, rawFormat := cmd.String("output"), cmd.String("format")
	if output == "" && rawFormat == "" {
		return r.writePlain("%s", formatter.PlaylistSummary(pl))
	}

	format, err := formatter.ParseFormat(rawFormat)
	if err != nil {
		return err
	}

	if output == "" {
		data, err := formatter.Export(pl, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	path, err := formatter.WriteExport(pl, format, output)
	if err != nil {
		return err
	}
	r.logger.Info("playlist written", "path", path, "tracks", pl.Len())
	return r.writePlain("✓ Playlist written to %s (%d tracks)\n", path, pl.Len())
}
