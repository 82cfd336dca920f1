package diversity

import (
	"fmt"
	"math"
	"strconv"

	"github.com/desertthunder/seedmix/internal/shared"
)

// Era bucket labels.
const (
	Era2020s   = "2020s"
	Era2010s   = "2010s"
	Era2000s   = "2000s"
	Era1990s   = "1990s"
	EraOlder   = "older"
	EraUnknown = "unknown"
)

const eraEpsilon = 1e-9

// Settings controls playlist selection.
type Settings struct {
	MaxPerArtist           int
	FeatureDiversityFactor float64
	EraDistribution        map[string]float64 // target share per era bucket, summing to at most 1
	EraPenalty             float64
	IncludeSeeds           bool
	GenreStrict            bool
	TempoTolerance         float64 // fraction the profile tempo range is widened by before filtering
	PopularityBias         float64
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxPerArtist:           2,
		FeatureDiversityFactor: 0.3,
		EraDistribution: map[string]float64{
			Era2020s: 0.3,
			Era2010s: 0.3,
			Era2000s: 0.2,
			Era1990s: 0.1,
			EraOlder: 0.1,
		},
		EraPenalty:     0.2,
		TempoTolerance: 0.15,
		PopularityBias: 0.1,
	}
}

// SettingsFromShared builds settings from the [diversity] TOML section.
func SettingsFromShared(dc shared.DiversityConfig) Settings {
	s := Settings{
		MaxPerArtist:           dc.MaxPerArtist,
		FeatureDiversityFactor: dc.FeatureDiversityFactor,
		EraDistribution:        make(map[string]float64, len(dc.Eras)),
		EraPenalty:             dc.EraPenalty,
		IncludeSeeds:           dc.IncludeSeeds,
		GenreStrict:            dc.GenreStrict,
		TempoTolerance:         dc.TempoTolerance,
		PopularityBias:         dc.PopularityBias,
	}
	for era, p := range dc.Eras {
		s.EraDistribution[era] = p
	}
	return s
}

// Validate rejects a non-positive artist cap, negative factors and era shares summing past 1.
func (s Settings) Validate() error {
	if s.MaxPerArtist <= 0 {
		return fmt.Errorf("%w: max per artist must be positive, got %d", shared.ErrInvalidConfig, s.MaxPerArtist)
	}
	for name, v := range map[string]float64{
		"feature diversity factor": s.FeatureDiversityFactor,
		"era penalty":              s.EraPenalty,
		"tempo tolerance":          s.TempoTolerance,
		"popularity bias":          s.PopularityBias,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s cannot be negative", shared.ErrInvalidConfig, name)
		}
	}

	var sum float64
	for era, p := range s.EraDistribution {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%w: era %q share %v is negative", shared.ErrInvalidConfig, era, p)
		}
		sum += p
	}
	if sum > 1+eraEpsilon {
		return fmt.Errorf("%w: era distribution sums to %.3f, more than 1.0", shared.ErrInvalidConfig, sum)
	}
	return nil
}

// EraBucket maps a release year onto its era label. Zero means the year is unknown.
func EraBucket(year int) string {
	switch {
	case year <= 0:
		return EraUnknown
	case year >= 2020:
		return Era2020s
	case year >= 2010:
		return Era2010s
	case year >= 2000:
		return Era2000s
	case year >= 1990:
		return Era1990s
	default:
		return EraOlder
	}
}

// eraTargets converts shares into track counts for a playlist of length n.
func (s Settings) eraTargets(n int) map[string]int {
	targets := make(map[string]int, len(s.EraDistribution))
	for era, p := range s.EraDistribution {
		targets[era] = int(math.Round(p * float64(n)))
	}
	return targets
}

// Describe renders the settings for logs.
func (s Settings) Describe() string {
	return "max_per_artist=" + strconv.Itoa(s.MaxPerArtist) +
		" diversity=" + strconv.FormatFloat(s.FeatureDiversityFactor, 'f', 2, 64) +
		" popularity_bias=" + strconv.FormatFloat(s.PopularityBias, 'f', 2, 64)
}
