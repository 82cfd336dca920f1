// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

func seedFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		verboseFlag(),
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "CSV file of seeds with a header row (track, artist, album, year, threshold)",
		},
		&cli.FloatFlag{
			Name:  "threshold",
			Usage: "Confidence threshold for seeds that do not set their own",
		},
	}
}

// resolveCommand resolves seeds against the configured providers
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve seed tracks to catalog entries",
		ArgsUsage: `["Track - Artist" ...]`,
		Flags: append(seedFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		),
		Action: r.Resolve,
	}
}

// generateCommand resolves seeds and builds a playlist of similar tracks
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate a playlist of tracks similar to the seeds",
		ArgsUsage: `["Track - Artist" ...]`,
		Flags: append(seedFlags(),
			&cli.IntFlag{
				Name:    "length",
				Aliases: []string{"n"},
				Usage:   "Number of tracks to select",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json, csv, markdown or txt (default: summary, or json with --output)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "include-seeds",
				Usage: "Place the resolved seeds at the top of the playlist",
			},
			&cli.IntFlag{
				Name:  "max-per-artist",
				Usage: "Maximum tracks by one artist",
			},
			&cli.BoolFlag{
				Name:  "genre-strict",
				Usage: "Drop candidates that share no genre with the seeds",
			},
		),
		Action: r.Generate,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag(), verboseFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// cacheCommand inspects and clears the persistent feature and resolution caches
func cacheCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		}
	}
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the persistent caches",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached feature vectors and resolutions",
				Flags:  flags(),
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cached entry",
				Flags:  flags(),
				Action: r.CacheClear,
			},
			{
				Name:   "purge",
				Usage:  "Delete expired entries",
				Flags:  flags(),
				Action: r.CachePurge,
			},
		},
	}
}
