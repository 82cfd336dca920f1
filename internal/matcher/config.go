package matcher

import (
	"fmt"

	"github.com/desertthunder/seedmix/internal/shared"
)

// Stage acceptance floors and per-query result limits.
const (
	exactMinScore      = 0.95
	normalizedMinScore = 0.8
	partialMinScore    = 0.7
	fuzzyMinScore      = 0.4

	exactLimit      = 10
	normalizedLimit = 20
	partialLimit    = 15
	fuzzyLimit      = 25

	maxPartialQueries = 5
	maxAlternatives   = 5
	aliasBonus        = 0.2
	trackWeight       = 0.6
	artistWeight      = 0.4
)

// Config holds the resolution thresholds.
type Config struct {
	ConfidenceThreshold float64 // default acceptance threshold when a seed has no override
	FuzzyThreshold      float64 // unweighted floor below which fuzzy candidates are discarded
	MaxSearchResults    int     // caps every per-query limit
	EnablePhonetic      bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.7,
		FuzzyThreshold:      0.6,
		MaxSearchResults:    50,
		EnablePhonetic:      true,
	}
}

// ConfigFromShared builds a resolver config from the [resolution] section of the TOML config.
func ConfigFromShared(rc shared.ResolutionConfig) Config {
	return Config{
		ConfidenceThreshold: rc.ConfidenceThreshold,
		FuzzyThreshold:      rc.FuzzyThreshold,
		MaxSearchResults:    rc.MaxSearchResults,
		EnablePhonetic:      rc.EnablePhonetic,
	}
}

// Validate rejects thresholds outside [0,1] and non-positive limits.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %v outside [0,1]", shared.ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: fuzzy threshold %v outside [0,1]", shared.ErrInvalidConfig, c.FuzzyThreshold)
	}
	if c.MaxSearchResults < 1 {
		return fmt.Errorf("%w: max search results must be positive, got %d", shared.ErrInvalidConfig, c.MaxSearchResults)
	}
	return nil
}

func (c Config) limit(stageLimit int) int {
	return min(stageLimit, c.MaxSearchResults)
}
