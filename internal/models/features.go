package models

import (
	"math"
)

// Feature names a continuous audio feature.
type Feature int

const (
	Tempo Feature = iota
	Energy
	Valence
	Danceability
	Acousticness
	Instrumentalness
	Liveness
	Speechiness
	Loudness
)

// ContinuousFeatures lists the continuous features in declaration order.
func ContinuousFeatures() []Feature {
	return []Feature{Tempo, Energy, Valence, Danceability, Acousticness, Instrumentalness, Liveness, Speechiness, Loudness}
}

func (f Feature) String() string {
	switch f {
	case Tempo:
		return "tempo"
	case Energy:
		return "energy"
	case Valence:
		return "valence"
	case Danceability:
		return "danceability"
	case Acousticness:
		return "acousticness"
	case Instrumentalness:
		return "instrumentalness"
	case Liveness:
		return "liveness"
	case Speechiness:
		return "speechiness"
	case Loudness:
		return "loudness"
	default:
		return ""
	}
}

// Bounds returns the declared global range of the feature.
func (f Feature) Bounds() (lo, hi float64) {
	switch f {
	case Tempo:
		return 50, 200
	case Loudness:
		return -60, 0
	default:
		return 0, 1
	}
}

// Span is the width of the feature's global range.
func (f Feature) Span() float64 {
	lo, hi := f.Bounds()
	return hi - lo
}

const (
	MaxKey = 11
	// KeyCount and ModeCount are the number of declared discrete values.
	KeyCount  = 12
	ModeCount = 2
)

// AudioFeatureVector holds the audio characteristics of one track.
//
// Values produced by [NewAudioFeatureVector] or [AudioFeatureVector.Clamped] always lie within
// their declared bounds: out-of-range values are clamped and NaN becomes the range midpoint.
type AudioFeatureVector struct {
	Tempo            float64 `json:"tempo"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Loudness         float64 `json:"loudness"`
	Key              int     `json:"key"`
	Mode             int     `json:"mode"`
	Estimated        bool    `json:"estimated,omitempty"` // derived without provider data
}

// NewAudioFeatureVector returns v with every field clamped into range.
func NewAudioFeatureVector(v AudioFeatureVector) AudioFeatureVector {
	return v.Clamped()
}

// Clamped returns a copy of v with every field inside its declared bounds.
func (v AudioFeatureVector) Clamped() AudioFeatureVector {
	out := v
	for _, f := range ContinuousFeatures() {
		out.set(f, clampFeature(f, v.Value(f)))
	}
	out.Key = min(max(v.Key, 0), MaxKey)
	if v.Mode > 0 {
		out.Mode = 1
	} else {
		out.Mode = 0
	}
	return out
}

// Value returns the value of a continuous feature.
func (v AudioFeatureVector) Value(f Feature) float64 {
	switch f {
	case Tempo:
		return v.Tempo
	case Energy:
		return v.Energy
	case Valence:
		return v.Valence
	case Danceability:
		return v.Danceability
	case Acousticness:
		return v.Acousticness
	case Instrumentalness:
		return v.Instrumentalness
	case Liveness:
		return v.Liveness
	case Speechiness:
		return v.Speechiness
	case Loudness:
		return v.Loudness
	default:
		return 0
	}
}

func (v *AudioFeatureVector) set(f Feature, x float64) {
	switch f {
	case Tempo:
		v.Tempo = x
	case Energy:
		v.Energy = x
	case Valence:
		v.Valence = x
	case Danceability:
		v.Danceability = x
	case Acousticness:
		v.Acousticness = x
	case Instrumentalness:
		v.Instrumentalness = x
	case Liveness:
		v.Liveness = x
	case Speechiness:
		v.Speechiness = x
	case Loudness:
		v.Loudness = x
	}
}

// With returns a clamped copy of v with feature f set to x.
func (v AudioFeatureVector) With(f Feature, x float64) AudioFeatureVector {
	v.set(f, clampFeature(f, x))
	return v
}

// Scaled returns the value of f mapped onto [0,1] using the feature's global bounds.
func (v AudioFeatureVector) Scaled(f Feature) float64 {
	lo, _ := f.Bounds()
	return (clampFeature(f, v.Value(f)) - lo) / f.Span()
}

// distanceWeights weight the continuous features for track-to-track comparison.
var distanceWeights = map[Feature]float64{
	Tempo:            0.15,
	Energy:           0.20,
	Valence:          0.15,
	Danceability:     0.15,
	Acousticness:     0.10,
	Instrumentalness: 0.05,
	Liveness:         0.05,
	Speechiness:      0.05,
}

// Distance is the weighted Euclidean distance between two vectors, each feature rescaled to [0,1].
func (v AudioFeatureVector) Distance(o AudioFeatureVector) float64 {
	var sum, total float64
	for _, f := range ContinuousFeatures() {
		w, ok := distanceWeights[f]
		if !ok {
			continue
		}
		d := v.Scaled(f) - o.Scaled(f)
		sum += w * d * d
		total += w
	}
	return math.Sqrt(sum / total)
}

// Similarity is 1 minus [AudioFeatureVector.Distance], within [0,1].
func (v AudioFeatureVector) Similarity(o AudioFeatureVector) float64 {
	return 1 - math.Min(1, v.Distance(o))
}

func clampFeature(f Feature, x float64) float64 {
	lo, hi := f.Bounds()
	if math.IsNaN(x) {
		return (lo + hi) / 2
	}
	return math.Min(hi, math.Max(lo, x))
}
