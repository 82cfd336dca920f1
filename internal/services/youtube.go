// YouTube Music implementation of [CatalogSearch]
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python library.
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
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a song result from the proxy search endpoint.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Year        string          `json:"year,omitempty"`
	DurationSec int             `json:"duration_seconds"`
	ISRC        string          `json:"isrc,omitempty"`
	Views       string          `json:"views,omitempty"`
}

// YouTubeService implements [CatalogSearch] for YouTube Music via the proxy.
//
// YouTube Music exposes no audio analysis, so Features always reports [shared.ErrFeaturesUnavailable].
type YouTubeService struct {
	api *APIClient
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string, client *http.Client) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{api: NewAPIClient(strings.TrimRight(baseURL, "/"), client)}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return ProviderYouTubeMusic
}

// Search calls GET /api/search?q={query}&filter=songs&limit={limit} on the proxy.
func (y *YouTubeService) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	q := url.Values{}
	q.Set("q", strings.TrimPrefix(query, "genre:"))
	q.Set("filter", "songs")
	q.Set("limit", strconv.Itoa(max(limit, 1)))

	var results []YouTubeTrack
	if err := y.api.GetJSON(ctx, "/api/search", q, &results); err != nil {
		return nil, fmt.Errorf("youtube music search: %w", err)
	}

	if len(results) > limit && limit > 0 {
		results = results[:limit]
	}

	tracks := make([]models.CandidateTrack, 0, len(results))
	for _, r := range results {
		if r.VideoID == "" {
			continue
		}
		tracks = append(tracks, r.Candidate())
	}
	return tracks, nil
}

// Features is not supported by YouTube Music.
func (y *YouTubeService) Features(_ context.Context, trackID string) (models.AudioFeatureVector, error) {
	return models.AudioFeatureVector{}, fmt.Errorf("%w: youtube music track %s", shared.ErrFeaturesUnavailable, trackID)
}

// Candidate maps a proxy search result onto a [models.CandidateTrack].
func (t YouTubeTrack) Candidate() models.CandidateTrack {
	c := models.CandidateTrack{
		ID:         t.VideoID,
		Title:      t.Title,
		Year:       releaseYear(t.Year),
		DurationMS: t.DurationSec * 1000,
		ISRC:       t.ISRC,
		Provider:   ProviderYouTubeMusic,
		Popularity: viewsPopularity(t.Views),
	}
	if len(t.Artists) > 0 {
		c.Artist = t.Artists[0].Name
	}
	if t.Album != nil {
		c.Album = t.Album.Name
	}
	return c
}

// viewsPopularity maps view counts such as "1.2B" or "350K" onto a 0-100 scale.
func viewsPopularity(views string) int {
	views = strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(views), " VIEWS"))
	if views == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(views, "B"):
		multiplier, views = 1e9, strings.TrimSuffix(views, "B")
	case strings.HasSuffix(views, "M"):
		multiplier, views = 1e6, strings.TrimSuffix(views, "M")
	case strings.HasSuffix(views, "K"):
		multiplier, views = 1e3, strings.TrimSuffix(views, "K")
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(views, ",", ""), 64)
	if err != nil {
		return 0
	}

	total := n * multiplier
	switch {
	case total >= 1e9:
		return 100
	case total >= 1e8:
		return 85
	case total >= 1e7:
		return 70
	case total >= 1e6:
		return 55
	case total >= 1e5:
		return 40
	case total >= 1e4:
		return 25
	default:
		return 10
	}
}
