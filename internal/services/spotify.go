// Spotify Web API implementation of [CatalogSearch]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
	spotifyMaxLimit = 50
)

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyAudioFeatures is the /audio-features payload.
type SpotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Tempo            float64 `json:"tempo"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Loudness         float64 `json:"loudness"`
	Key              int     `json:"key"` // -1 when no key was detected
	Mode             int     `json:"mode"`
}

// SpotifyOptions configures a [SpotifyService].
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	Market       string
	BaseURL      string // overrides the Web API root
	TokenURL     string // overrides the accounts token endpoint
	HTTPClient   *http.Client
}

// SpotifyService searches the Spotify catalog with an app token from the client credentials flow.
type SpotifyService struct {
	api    *APIClient
	market string
}

// NewSpotifyService creates a Spotify service.
//
// The app token is fetched lazily with ctx and refreshed automatically, so ctx should outlive the service.
func NewSpotifyService(ctx context.Context, opts SpotifyOptions) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}

	config := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
	}

	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	return &SpotifyService{
		api:    NewAPIClient(opts.BaseURL, config.Client(ctx)),
		market: opts.Market,
	}, nil
}

func (s *SpotifyService) Name() string {
	return ProviderSpotify
}

// Search calls GET /search?type=track.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	q := url.Values{}
	q.Set("q", spotifyQuery(query))
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(min(max(limit, 1), spotifyMaxLimit)))
	if s.market != "" {
		q.Set("market", s.market)
	}

	var resp spotifySearchResponse
	if err := s.api.GetJSON(ctx, "/search", q, &resp); err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}

	tracks := make([]models.CandidateTrack, 0, len(resp.Tracks.Items))
	for _, t := range resp.Tracks.Items {
		tracks = append(tracks, t.Candidate())
	}
	return tracks, nil
}

// Features calls GET /audio-features/{id}.
func (s *SpotifyService) Features(ctx context.Context, trackID string) (models.AudioFeatureVector, error) {
	var f SpotifyAudioFeatures
	if err := s.api.GetJSON(ctx, "/audio-features/"+url.PathEscape(trackID), nil, &f); err != nil {
		return models.AudioFeatureVector{}, fmt.Errorf("spotify audio features: %w", err)
	}
	if f.ID == "" {
		return models.AudioFeatureVector{}, fmt.Errorf("%w: spotify track %s", shared.ErrFeaturesUnavailable, trackID)
	}
	return f.Vector(), nil
}

// Candidate maps a Spotify track onto a [models.CandidateTrack].
func (t SpotifyTrack) Candidate() models.CandidateTrack {
	c := models.CandidateTrack{
		ID:         t.ID,
		Title:      t.Name,
		Album:      t.Album.Name,
		Year:       releaseYear(t.Album.ReleaseDate),
		Popularity: t.Popularity,
		DurationMS: t.DurationMS,
		ISRC:       t.ExternalIDs.ISRC,
		Provider:   ProviderSpotify,
	}
	if len(t.Artists) > 0 {
		c.Artist = t.Artists[0].Name
		c.Genres = t.Artists[0].Genres
	}
	return c
}

// Vector converts the payload into a clamped feature vector.
func (f SpotifyAudioFeatures) Vector() models.AudioFeatureVector {
	return models.NewAudioFeatureVector(models.AudioFeatureVector{
		Tempo:            f.Tempo,
		Energy:           f.Energy,
		Valence:          f.Valence,
		Danceability:     f.Danceability,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Liveness:         f.Liveness,
		Speechiness:      f.Speechiness,
		Loudness:         f.Loudness,
		Key:              f.Key,
		Mode:             f.Mode,
	})
}

// spotifyQuery rewrites "genre:x y" into Spotify's quoted field filter.
func spotifyQuery(query string) string {
	if genre, ok := strings.CutPrefix(query, "genre:"); ok {
		return fmt.Sprintf("genre:%q", strings.TrimSpace(genre))
	}
	return query
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
