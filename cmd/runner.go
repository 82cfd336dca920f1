package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/cache"
	"github.com/desertthunder/seedmix/internal/matcher"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
	"github.com/desertthunder/seedmix/internal/repositories"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/desertthunder/seedmix/internal/similarity"
	"github.com/desertthunder/seedmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies are built on first use from the loaded configuration, so commands that never touch a
// provider (setup, cache) do not need credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	providers   []*services.Provider
	db          *sql.DB
	ownsDB      bool
	features    *repositories.FeatureRepository
	resolutions *repositories.ResolutionRepository
	pool        *services.Pool
	engine      *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Providers  []*services.Provider // replaces the providers built from Config
	DB         *sql.DB              // replaces the configured database
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		providers:  opts.Providers,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, resolveCommand, generateCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// loadConfig reads the --config file once, falling back to defaults when it does not exist.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.config != nil {
		return r.config
	}

	path := cmd.String("config")
	if !cmd.IsSet("config") && r.configPath != "" {
		path = r.configPath
	}
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		} else {
			config = loaded
			r.configPath = path
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if !cmd.Bool("verbose") && config.Log.Level != "" {
		shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	}
	r.config = config
	return config
}

// openDatabase opens the configured cache database and its repositories.
func (r *Runner) openDatabase(config *shared.Config) error {
	if r.features != nil {
		return nil
	}
	if r.db == nil {
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db, r.ownsDB = db, true
	} else if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ttl := time.Duration(config.Cache.TTLSeconds) * time.Second
	r.features = repositories.NewFeatureRepository(r.db, ttl)
	r.resolutions = repositories.NewResolutionRepository(r.db, ttl)
	return nil
}

// playlistEngine builds the provider pool, resolver and similarity engine from config.
func (r *Runner) playlistEngine(ctx context.Context, cmd *cli.Command) (*tasks.PlaylistEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	config := r.loadConfig(cmd)

	if r.providers == nil {
		providers, err := buildProviders(ctx, config, r.logger)
		if err != nil {
			return nil, err
		}
		r.providers = providers
	}

	cacheOpts := cache.Options{
		TTL:        time.Duration(config.Cache.TTLSeconds) * time.Second,
		MaxEntries: config.Cache.MaxEntries,
	}
	r.pool = services.NewPool(r.providers, services.PoolOptions{
		Timeout:       time.Duration(config.Resolution.SearchTimeoutSeconds) * time.Second,
		MaxConcurrent: config.Resolution.MaxConcurrentSearches,
		SearchCache:   cache.New[[]models.CandidateTrack](cacheOpts),
		FeatureCache:  cache.New[models.AudioFeatureVector](cacheOpts),
		Logger:        r.logger,
	})

	normalizer := normalize.New(normalize.DefaultAliasTable().With(config.Resolution.Aliases))
	resolver, err := matcher.NewResolver(r.pool, normalizer, matcher.ConfigFromShared(config.Resolution), r.logger)
	if err != nil {
		return nil, err
	}

	opts := tasks.EngineOptions{
		Workers:   config.Resolution.MaxConcurrentSeeds,
		Providers: r.pool.Names(),
		Logger:    r.logger,
	}
	var store similarity.FeatureStore
	if config.Cache.Persist {
		if err := r.openDatabase(config); err != nil {
			return nil, err
		}
		store, opts.Store = r.features, r.resolutions
	}

	r.engine = tasks.NewPlaylistEngine(resolver, similarity.NewEngine(r.pool, store, r.logger), opts)
	return r.engine, nil
}

// buildProviders wraps every enabled provider in configured order.
func buildProviders(ctx context.Context, config *shared.Config, logger *log.Logger) ([]*services.Provider, error) {
	pc := config.Providers
	var providers []*services.Provider
	add := func(source services.CatalogSearch, weight, rateLimit float64) {
		providers = append(providers, services.NewProvider(source, services.ProviderOptions{
			Weight:    weight,
			RateLimit: rateLimit,
			Logger:    logger,
		}))
	}

	if pc.Spotify.Enabled {
		spotify, err := services.NewSpotifyService(ctx, services.SpotifyOptions{
			ClientID:     pc.Spotify.ClientID,
			ClientSecret: pc.Spotify.ClientSecret,
			Market:       pc.Spotify.Market,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Spotify: %w", err)
		}
		add(spotify, pc.Spotify.Weight, pc.Spotify.RateLimit)
	}
	if pc.YouTube.Enabled {
		add(services.NewYouTubeService(pc.YouTube.ProxyURL, nil), pc.YouTube.Weight, pc.YouTube.RateLimit)
	}
	if pc.LastFM.Enabled {
		lastfm, err := services.NewLastFMService(pc.LastFM.APIKey, pc.LastFM.APISecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Last.fm: %w", err)
		}
		add(lastfm, pc.LastFM.Weight, pc.LastFM.RateLimit)
	}
	if pc.Catalog.Enabled {
		catalog, err := services.LoadStaticCatalog(pc.Catalog.Name, pc.Catalog.Path)
		if err != nil {
			return nil, err
		}
		add(catalog, pc.Catalog.Weight, 0)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: no providers enabled", shared.ErrInvalidConfig)
	}
	return providers, nil
}

// logProgress drains updates into the logger until the channel is closed.
func (r *Runner) logProgress(updates <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	for u := range updates {
		r.logger.Info(u.Message, "phase", u.Phase.String())
	}
	close(done)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
