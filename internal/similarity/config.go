package similarity

import (
	"fmt"
	"math"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
)

const weightEpsilon = 1e-6

// FeatureWeights weight each feature's contribution to a similarity score. They must sum to 1.
type FeatureWeights struct {
	Tempo            float64 `json:"tempo"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Key              float64 `json:"key"`
	Mode             float64 `json:"mode"`
}

// DefaultWeights returns the default feature weighting.
func DefaultWeights() FeatureWeights {
	return FeatureWeights{
		Tempo:            0.15,
		Energy:           0.20,
		Valence:          0.15,
		Danceability:     0.15,
		Acousticness:     0.10,
		Instrumentalness: 0.05,
		Liveness:         0.05,
		Speechiness:      0.05,
		Key:              0.05,
		Mode:             0.05,
	}
}

// WeightsFromShared converts the [similarity.weights] config section.
func WeightsFromShared(w shared.WeightsConfig) FeatureWeights {
	return FeatureWeights{
		Tempo:            w.Tempo,
		Energy:           w.Energy,
		Valence:          w.Valence,
		Danceability:     w.Danceability,
		Acousticness:     w.Acousticness,
		Instrumentalness: w.Instrumentalness,
		Liveness:         w.Liveness,
		Speechiness:      w.Speechiness,
		Key:              w.Key,
		Mode:             w.Mode,
	}
}

// Of returns the weight of a continuous feature. Loudness is never weighted.
func (w FeatureWeights) Of(f models.Feature) float64 {
	switch f {
	case models.Tempo:
		return w.Tempo
	case models.Energy:
		return w.Energy
	case models.Valence:
		return w.Valence
	case models.Danceability:
		return w.Danceability
	case models.Acousticness:
		return w.Acousticness
	case models.Instrumentalness:
		return w.Instrumentalness
	case models.Liveness:
		return w.Liveness
	case models.Speechiness:
		return w.Speechiness
	default:
		return 0
	}
}

// Sum adds every weight.
func (w FeatureWeights) Sum() float64 {
	return w.Tempo + w.Energy + w.Valence + w.Danceability + w.Acousticness +
		w.Instrumentalness + w.Liveness + w.Speechiness + w.Key + w.Mode
}

// Validate rejects negative weights and weights that do not sum to 1.
func (w FeatureWeights) Validate() error {
	for name, v := range map[string]float64{
		"tempo": w.Tempo, "energy": w.Energy, "valence": w.Valence, "danceability": w.Danceability,
		"acousticness": w.Acousticness, "instrumentalness": w.Instrumentalness, "liveness": w.Liveness,
		"speechiness": w.Speechiness, "key": w.Key, "mode": w.Mode,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s weight %v is negative", shared.ErrInvalidConfig, name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightEpsilon {
		return fmt.Errorf("%w: feature weights sum to %.4f, expected 1.0", shared.ErrInvalidConfig, sum)
	}
	return nil
}

// Config controls candidate search and scoring.
type Config struct {
	TargetCountMultiplier        int
	MinSimilarityThreshold       float64
	PreferredSimilarityThreshold float64
	ProfileTolerance             float64
	MaxResultsPerQuery           int // 0 means no cap beyond target count x multiplier
	RelatedArtists               int // similar artists looked up per seed artist
	RelatedTracks                int // top tracks fetched per similar artist
	Weights                      FeatureWeights
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		TargetCountMultiplier:        3,
		MinSimilarityThreshold:       0.4,
		PreferredSimilarityThreshold: 0.6,
		ProfileTolerance:             0.2,
		MaxResultsPerQuery:           50,
		RelatedArtists:               5,
		RelatedTracks:                5,
		Weights:                      DefaultWeights(),
	}
}

// ConfigFromShared builds a config from the [similarity] TOML section.
func ConfigFromShared(sc shared.SimilarityConfig) Config {
	cfg := DefaultConfig()
	cfg.TargetCountMultiplier = sc.TargetCountMultiplier
	cfg.MinSimilarityThreshold = sc.MinSimilarityThreshold
	cfg.PreferredSimilarityThreshold = sc.PreferredSimilarityThreshold
	cfg.ProfileTolerance = sc.ProfileTolerance
	cfg.Weights = WeightsFromShared(sc.Weights)
	return cfg
}

// Validate checks the weights and every threshold.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.TargetCountMultiplier < 1 {
		return fmt.Errorf("%w: target count multiplier must be at least 1, got %d", shared.ErrInvalidConfig, c.TargetCountMultiplier)
	}
	for name, v := range map[string]float64{
		"min similarity threshold":       c.MinSimilarityThreshold,
		"preferred similarity threshold": c.PreferredSimilarityThreshold,
		"profile tolerance":              c.ProfileTolerance,
	} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s %v outside [0,1]", shared.ErrInvalidConfig, name, v)
		}
	}
	if c.MaxResultsPerQuery < 0 || c.RelatedArtists < 0 || c.RelatedTracks < 0 {
		return fmt.Errorf("%w: limits cannot be negative", shared.ErrInvalidConfig)
	}
	return nil
}
