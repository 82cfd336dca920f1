package models

import "math"

// Range is a closed interval over one feature plus the tolerance window used to grade
// values that fall outside it.
type Range struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Window float64 `json:"window"`
}

// Contains reports whether x lies inside the range.
func (r Range) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

// Distance is how far x lies outside the range, divided by the window and clipped to [0,1].
func (r Range) Distance(x float64) float64 {
	var d float64
	switch {
	case x < r.Low:
		d = r.Low - x
	case x > r.High:
		d = x - r.High
	default:
		return 0
	}
	if r.Window <= 0 {
		return 1
	}
	return math.Min(1, d/r.Window)
}

// Center is the midpoint of the range.
func (r Range) Center() float64 {
	return (r.Low + r.High) / 2
}

// AudioFeatureProfile is the target envelope that candidate tracks are scored against.
//
// A nil PreferredKeys or PreferredModes means the feature is unconstrained.
type AudioFeatureProfile struct {
	Tempo            Range `json:"tempo"`
	Energy           Range `json:"energy"`
	Valence          Range `json:"valence"`
	Danceability     Range `json:"danceability"`
	Acousticness     Range `json:"acousticness"`
	Instrumentalness Range `json:"instrumentalness"`
	Liveness         Range `json:"liveness"`
	Speechiness      Range `json:"speechiness"`
	Loudness         Range `json:"loudness"`

	PreferredKeys   []int    `json:"preferred_keys,omitempty"`
	PreferredModes  []int    `json:"preferred_modes,omitempty"`
	PreferredGenres []string `json:"preferred_genres,omitempty"`

	Average   AudioFeatureVector `json:"average"`
	Variance  map[string]float64 `json:"variance,omitempty"`
	Tolerance float64            `json:"tolerance"`

	SeedIDs     []string `json:"seed_ids,omitempty"`
	SeedArtists []string `json:"seed_artists,omitempty"`
}

// Range returns the range of a continuous feature.
func (p AudioFeatureProfile) Range(f Feature) Range {
	switch f {
	case Tempo:
		return p.Tempo
	case Energy:
		return p.Energy
	case Valence:
		return p.Valence
	case Danceability:
		return p.Danceability
	case Acousticness:
		return p.Acousticness
	case Instrumentalness:
		return p.Instrumentalness
	case Liveness:
		return p.Liveness
	case Speechiness:
		return p.Speechiness
	case Loudness:
		return p.Loudness
	default:
		return Range{}
	}
}

// SetRange replaces the range of a continuous feature.
func (p *AudioFeatureProfile) SetRange(f Feature, r Range) {
	switch f {
	case Tempo:
		p.Tempo = r
	case Energy:
		p.Energy = r
	case Valence:
		p.Valence = r
	case Danceability:
		p.Danceability = r
	case Acousticness:
		p.Acousticness = r
	case Instrumentalness:
		p.Instrumentalness = r
	case Liveness:
		p.Liveness = r
	case Speechiness:
		p.Speechiness = r
	case Loudness:
		p.Loudness = r
	}
}

// PrefersKey reports whether key satisfies the profile's key preference.
func (p AudioFeatureProfile) PrefersKey(key int) bool {
	return len(p.PreferredKeys) == 0 || containsInt(p.PreferredKeys, key)
}

// PrefersMode reports whether mode satisfies the profile's mode preference.
func (p AudioFeatureProfile) PrefersMode(mode int) bool {
	return len(p.PreferredModes) == 0 || containsInt(p.PreferredModes, mode)
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
