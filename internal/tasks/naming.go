package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/normalize"
)

const maxNamedArtists = 3

// PlaylistName names a playlist after its seeds.
func PlaylistName(seeds []models.ResolvedTrack) string {
	switch n := len(seeds); {
	case n == 0:
		return "Generated Playlist"
	case n == 1:
		return "Similar to " + seeds[0].Title
	case n <= 3:
		titles := make([]string, n)
		for i, s := range seeds {
			titles[i] = s.Title
		}
		return "Similar to " + strings.Join(titles, ", ")
	}

	var artists []string
	seen := make(map[string]bool)
	for _, s := range seeds {
		key := normalize.NormalizeArtist(s.Artist)
		if !seen[key] {
			seen[key] = true
			artists = append(artists, s.Artist)
		}
	}
	if len(artists) <= maxNamedArtists {
		return "Similar to " + strings.Join(artists, ", ")
	}
	return fmt.Sprintf("Generated from %d tracks", len(seeds))
}

// PlaylistDescription summarizes the target profile.
func PlaylistDescription(profile models.AudioFeatureProfile) string {
	desc := fmt.Sprintf("Tempo around %.0f BPM, energy %.2f, valence %.2f",
		profile.Tempo.Center(), profile.Energy.Center(), profile.Valence.Center())
	if len(profile.PreferredGenres) > 0 {
		desc += "; genres: " + strings.Join(profile.PreferredGenres[:min(3, len(profile.PreferredGenres))], ", ")
	}
	return desc
}
