package similarity

import (
	"github.com/desertthunder/seedmix/internal/models"
)

const (
	maxGenreQueries = 3
	maxQueries      = 10
)

// GenerateQueries turns a profile into provider search queries: up to three "genre:X" filters,
// then mood keywords from the valence and energy averages, then tempo band keywords.
func GenerateQueries(profile models.AudioFeatureProfile) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(qs ...string) {
		for _, q := range qs {
			if q != "" && !seen[q] && len(out) < maxQueries {
				seen[q] = true
				out = append(out, q)
			}
		}
	}

	for i, g := range profile.PreferredGenres {
		if i == maxGenreQueries {
			break
		}
		add("genre:" + g)
	}

	avg := profile.Average
	switch {
	case avg.Valence > 0.7:
		add("happy", "upbeat", "positive")
	case avg.Valence < 0.3:
		add("sad", "melancholy", "dark")
	default:
		add("chill", "mellow")
	}

	switch {
	case avg.Energy > 0.7:
		add("energetic", "intense", "powerful")
	case avg.Energy < 0.3:
		add("calm", "peaceful", "ambient")
	}

	switch {
	case avg.Tempo > 140:
		add("fast", "uptempo", "dance")
	case avg.Tempo < 90:
		add("slow", "ballad", "downtempo")
	}
	return out
}
