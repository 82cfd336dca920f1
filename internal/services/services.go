// package services defines the catalog capability interfaces and their provider implementations
//
// Spotify, YouTube Music (via proxy), Last.fm, static JSON catalog
package services

import (
	"context"

	"github.com/desertthunder/seedmix/internal/models"
)

// Provider names used in configuration, candidate tracks and weight lookups.
const (
	ProviderSpotify      = "spotify"
	ProviderAppleMusic   = "apple_music"
	ProviderYouTubeMusic = "youtube_music"
	ProviderLastFM       = "lastfm"
	ProviderCatalog      = "catalog"
)

var defaultWeights = map[string]float64{
	ProviderSpotify:      1.0,
	ProviderAppleMusic:   0.9,
	ProviderYouTubeMusic: 0.7,
	ProviderLastFM:       0.6,
	ProviderCatalog:      1.0,
}

// DefaultWeight returns the built-in ranking weight for a provider, or 1 for unknown providers.
func DefaultWeight(provider string) float64 {
	if w, ok := defaultWeights[provider]; ok {
		return w
	}
	return 1.0
}

// CatalogSearch is the capability every music catalog provider implements.
type CatalogSearch interface {
	// Name returns the provider identifier (e.g., "spotify").
	Name() string

	// Search returns up to limit catalog entries matching query.
	// Queries of the form "genre:X" request tracks tagged with genre X.
	Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error)

	// Features returns the audio features of a catalog entry.
	// Returns [shared.ErrFeaturesUnavailable] when the provider has no audio analysis.
	Features(ctx context.Context, trackID string) (models.AudioFeatureVector, error)
}

// ArtistRelator is implemented by providers that know which artists are similar to each other.
type ArtistRelator interface {
	SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error)
	TopTracks(ctx context.Context, artist string, limit int) ([]models.CandidateTrack, error)
}
