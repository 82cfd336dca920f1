package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Providers  ProvidersConfig  `toml:"providers"`
	Resolution ResolutionConfig `toml:"resolution"`
	Similarity SimilarityConfig `toml:"similarity"`
	Diversity  DiversityConfig  `toml:"diversity"`
	Database   DatabaseConfig   `toml:"database"`
	Cache      CacheConfig      `toml:"cache"`
	Log        LogConfig        `toml:"log"`
}

// ProvidersConfig contains per-provider credentials and weighting.
type ProvidersConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
	LastFM  LastFMConfig  `toml:"lastfm"`
	Catalog CatalogConfig `toml:"catalog"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	Enabled      bool    `toml:"enabled"`
	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	Market       string  `toml:"market"`
	Weight       float64 `toml:"weight" validate:"gte=0,lte=1"`
	RateLimit    float64 `toml:"rate_limit" validate:"gte=0"`
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	Enabled   bool    `toml:"enabled"`
	ProxyURL  string  `toml:"proxy_url" validate:"omitempty,url"`
	Weight    float64 `toml:"weight" validate:"gte=0,lte=1"`
	RateLimit float64 `toml:"rate_limit" validate:"gte=0"`
}

// LastFMConfig contains Last.fm API credentials.
type LastFMConfig struct {
	Enabled   bool    `toml:"enabled"`
	APIKey    string  `toml:"api_key"`
	APISecret string  `toml:"api_secret"`
	Weight    float64 `toml:"weight" validate:"gte=0,lte=1"`
	RateLimit float64 `toml:"rate_limit" validate:"gte=0"`
}

// CatalogConfig points at a local JSON catalog used as an offline provider.
type CatalogConfig struct {
	Enabled bool    `toml:"enabled"`
	Name    string  `toml:"name"`
	Path    string  `toml:"path"`
	Weight  float64 `toml:"weight" validate:"gte=0,lte=1"`
}

// ResolutionConfig contains seed resolution thresholds and limits.
type ResolutionConfig struct {
	ConfidenceThreshold   float64             `toml:"confidence_threshold" validate:"gte=0,lte=1"`
	FuzzyThreshold        float64             `toml:"fuzzy_threshold" validate:"gte=0,lte=1"`
	MaxSearchResults      int                 `toml:"max_search_results" validate:"gte=1,lte=200"`
	EnablePhonetic        bool                `toml:"enable_phonetic"`
	SearchTimeoutSeconds  int                 `toml:"search_timeout_seconds" validate:"gte=1"`
	MaxConcurrentSearches int                 `toml:"max_concurrent_searches" validate:"gte=1"`
	MaxConcurrentSeeds    int                 `toml:"max_concurrent_seeds" validate:"gte=1"`
	Aliases               map[string][]string `toml:"aliases"`
}

// SimilarityConfig contains candidate search and scoring settings.
type SimilarityConfig struct {
	TargetCountMultiplier        int           `toml:"target_count_multiplier" validate:"gte=1"`
	MinSimilarityThreshold       float64       `toml:"min_similarity_threshold" validate:"gte=0,lte=1"`
	PreferredSimilarityThreshold float64       `toml:"preferred_similarity_threshold" validate:"gte=0,lte=1"`
	SearchTimeoutSeconds         int           `toml:"search_timeout_seconds" validate:"gte=1"`
	MaxConcurrentSearches        int           `toml:"max_concurrent_searches" validate:"gte=1"`
	ProfileTolerance             float64       `toml:"profile_tolerance" validate:"gte=0,lte=1"`
	Weights                      WeightsConfig `toml:"weights"`
}

// WeightsConfig holds per-feature scoring weights.
type WeightsConfig struct {
	Tempo            float64 `toml:"tempo" validate:"gte=0"`
	Energy           float64 `toml:"energy" validate:"gte=0"`
	Valence          float64 `toml:"valence" validate:"gte=0"`
	Danceability     float64 `toml:"danceability" validate:"gte=0"`
	Acousticness     float64 `toml:"acousticness" validate:"gte=0"`
	Instrumentalness float64 `toml:"instrumentalness" validate:"gte=0"`
	Liveness         float64 `toml:"liveness" validate:"gte=0"`
	Speechiness      float64 `toml:"speechiness" validate:"gte=0"`
	Key              float64 `toml:"key" validate:"gte=0"`
	Mode             float64 `toml:"mode" validate:"gte=0"`
}

// DiversityConfig contains playlist selection settings.
type DiversityConfig struct {
	MaxPerArtist           int                `toml:"max_per_artist" validate:"gte=1"`
	FeatureDiversityFactor float64            `toml:"feature_diversity_factor" validate:"gte=0,lte=1"`
	IncludeSeeds           bool               `toml:"include_seeds"`
	GenreStrict            bool               `toml:"genre_strict"`
	TempoTolerance         float64            `toml:"tempo_tolerance" validate:"gte=0"`
	PopularityBias         float64            `toml:"popularity_bias" validate:"gte=0,lte=1"`
	EraPenalty             float64            `toml:"era_penalty" validate:"gte=0"`
	Eras                   map[string]float64 `toml:"eras" validate:"dive,gte=0,lte=1"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// CacheConfig contains search and feature cache settings.
type CacheConfig struct {
	TTLSeconds int  `toml:"ttl_seconds" validate:"gte=0"`
	MaxEntries int  `toml:"max_entries" validate:"gte=0"`
	Persist    bool `toml:"persist"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
}

// LoadConfig reads a TOML configuration file and overlays it on the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateStruct(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
