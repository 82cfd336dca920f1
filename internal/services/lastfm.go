// Last.fm implementation of [CatalogSearch] and [ArtistRelator]
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/shkh/lastfm-go/lastfm"
)

type lastfmTopTrack struct {
	Name      string
	PlayCount int
}

type lastfmSimilar struct {
	Name  string
	Match float64
}

// lastfmArtistAPI is the subset of the Last.fm artist methods the service uses.
type lastfmArtistAPI interface {
	topTracks(artist string, limit int) ([]lastfmTopTrack, error)
	similar(artist string, limit int) ([]lastfmSimilar, error)
}

type lastfmClient struct {
	api *lastfm.Api
}

func (c lastfmClient) topTracks(artist string, limit int) ([]lastfmTopTrack, error) {
	result, err := c.api.Artist.GetTopTracks(lastfm.P{"artist": artist, "limit": limit})
	if err != nil {
		return nil, err
	}

	tracks := make([]lastfmTopTrack, 0, len(result.Tracks))
	for _, t := range result.Tracks {
		playcount, _ := strconv.Atoi(t.PlayCount) // parse failure means count stays 0
		tracks = append(tracks, lastfmTopTrack{Name: t.Name, PlayCount: playcount})
	}
	return tracks, nil
}

func (c lastfmClient) similar(artist string, limit int) ([]lastfmSimilar, error) {
	result, err := c.api.Artist.GetSimilar(lastfm.P{"artist": artist, "limit": limit})
	if err != nil {
		return nil, err
	}

	artists := make([]lastfmSimilar, 0, len(result.Similars))
	for _, a := range result.Similars {
		score, _ := strconv.ParseFloat(a.Match, 64) // parse failure means score stays 0
		artists = append(artists, lastfmSimilar{Name: a.Name, Match: score})
	}
	return artists, nil
}

// LastFMService treats search queries as artist names and returns their top tracks.
//
// Last.fm has no track-level audio analysis; Features always reports [shared.ErrFeaturesUnavailable].
type LastFMService struct {
	api lastfmArtistAPI
}

// NewLastFMService creates a Last.fm service with the given API credentials.
func NewLastFMService(apiKey, apiSecret string) (*LastFMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing lastfm api_key", shared.ErrMissingCredentials)
	}
	return &LastFMService{api: lastfmClient{api: lastfm.New(apiKey, apiSecret)}}, nil
}

func (l *LastFMService) Name() string {
	return ProviderLastFM
}

// Search returns the top tracks of the artist named by query.
// Genre queries are not supported and return no results.
func (l *LastFMService) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	if strings.HasPrefix(query, "genre:") {
		return nil, nil
	}
	return l.TopTracks(ctx, query, limit)
}

// Features is not supported by Last.fm.
func (l *LastFMService) Features(_ context.Context, trackID string) (models.AudioFeatureVector, error) {
	return models.AudioFeatureVector{}, fmt.Errorf("%w: lastfm track %s", shared.ErrFeaturesUnavailable, trackID)
}

// TopTracks calls artist.getTopTracks.
//
// Popularity is the play count relative to the artist's most played track, scaled to 0-100.
func (l *LastFMService) TopTracks(ctx context.Context, artist string, limit int) ([]models.CandidateTrack, error) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return nil, nil
	}

	tracks, err := callContext(ctx, func() ([]lastfmTopTrack, error) { return l.api.topTracks(artist, limit) })
	if err != nil {
		return nil, fmt.Errorf("lastfm top tracks: %w", err)
	}

	top := 0
	for _, t := range tracks {
		top = max(top, t.PlayCount)
	}

	out := make([]models.CandidateTrack, 0, len(tracks))
	for _, t := range tracks {
		c := models.CandidateTrack{
			ID:       lastfmTrackID(artist, t.Name),
			Title:    t.Name,
			Artist:   artist,
			Provider: ProviderLastFM,
		}
		if top > 0 {
			c.Popularity = t.PlayCount * 100 / top
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SimilarArtists calls artist.getSimilar and returns names ordered by match score.
func (l *LastFMService) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	similar, err := callContext(ctx, func() ([]lastfmSimilar, error) { return l.api.similar(artist, limit) })
	if err != nil {
		return nil, fmt.Errorf("lastfm similar artists: %w", err)
	}

	names := make([]string, 0, len(similar))
	for _, a := range similar {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names, nil
}

// callContext runs fn, which cannot be cancelled, and stops waiting once ctx ends.
func callContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

func lastfmTrackID(artist, title string) string {
	return "lastfm:" + shared.NormalizeTrackKey(title, artist)
}
