package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/seedmix/internal/shared"
)

// UnknownArtist is used when a free-form seed carries no recognisable artist.
const UnknownArtist = "Unknown Artist"

// SeedTrack is a user-supplied description of a track to resolve.
type SeedTrack struct {
	Track     string   `json:"track"`
	Artist    string   `json:"artist"`
	Album     string   `json:"album,omitempty"`
	Year      int      `json:"year,omitempty"`
	Threshold *float64 `json:"confidence_threshold,omitempty"`
}

// SeedOption sets an optional [SeedTrack] field.
type SeedOption func(*SeedTrack)

// WithAlbum sets the album.
func WithAlbum(album string) SeedOption {
	return func(s *SeedTrack) { s.Album = shared.CollapseSpace(album) }
}

// WithYear sets the release year.
func WithYear(year int) SeedOption {
	return func(s *SeedTrack) { s.Year = year }
}

// WithThreshold overrides the confidence threshold for this seed.
func WithThreshold(threshold float64) SeedOption {
	return func(s *SeedTrack) { s.Threshold = &threshold }
}

// NewSeedTrack builds a validated [SeedTrack] with whitespace-collapsed fields.
func NewSeedTrack(track, artist string, opts ...SeedOption) (SeedTrack, error) {
	s := SeedTrack{
		Track:  shared.CollapseSpace(track),
		Artist: shared.CollapseSpace(artist),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.Validate(); err != nil {
		return SeedTrack{}, err
	}
	return s, nil
}

// Validate checks required fields, the year window and the threshold range.
func (s SeedTrack) Validate() error {
	if s.Track == "" {
		return fmt.Errorf("%w: track name cannot be empty", shared.ErrInvalidInput)
	}
	if s.Artist == "" {
		return fmt.Errorf("%w: artist name cannot be empty", shared.ErrInvalidInput)
	}
	if s.Year != 0 {
		if maxYear := time.Now().Year() + 1; s.Year < 1900 || s.Year > maxYear {
			return fmt.Errorf("%w: year %d outside 1900..%d", shared.ErrInvalidInput, s.Year, maxYear)
		}
	}
	if s.Threshold != nil && (*s.Threshold < 0 || *s.Threshold > 1) {
		return fmt.Errorf("%w: confidence threshold %.2f outside [0,1]", shared.ErrInvalidInput, *s.Threshold)
	}
	return nil
}

// ParseSeedTrack builds a seed from "Track - Artist", "Artist: Track" or "Track by Artist".
//
// Anything else is taken as a track name by [UnknownArtist].
func ParseSeedTrack(input string) (SeedTrack, error) {
	s := shared.CollapseSpace(input)
	if s == "" {
		return SeedTrack{}, fmt.Errorf("%w: empty seed string", shared.ErrInvalidInput)
	}

	if idx := strings.LastIndex(s, " - "); idx > 0 && idx+3 < len(s) {
		return NewSeedTrack(s[:idx], s[idx+3:])
	}
	if idx := strings.Index(s, ": "); idx > 0 && idx+2 < len(s) {
		return NewSeedTrack(s[idx+2:], s[:idx])
	}
	if idx := lastIndexFold(s, " by "); idx > 0 && idx+4 < len(s) {
		return NewSeedTrack(s[:idx], s[idx+4:])
	}
	return NewSeedTrack(s, UnknownArtist)
}

// fieldKeys folds "Track Name", "track-name" and "TRACK_NAME" to one lookup key.
var fieldKeys = strings.NewReplacer(" ", "_", "-", "_")

// SeedTrackFromMap builds a seed from loosely named fields, as found in CSV headers or JSON.
//
// A year that does not parse is dropped rather than rejecting the seed.
func SeedTrackFromMap(fields map[string]string) (SeedTrack, error) {
	lower := make(map[string]string, len(fields))
	for k, v := range fields {
		lower[fieldKeys.Replace(strings.ToLower(strings.TrimSpace(k)))] = v
	}
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(lower[k]); v != "" {
				return v
			}
		}
		return ""
	}

	var opts []SeedOption
	if album := pick("album", "album_name"); album != "" {
		opts = append(opts, WithAlbum(album))
	}
	if raw := pick("year", "release_year", "release_date"); raw != "" {
		if len(raw) > 4 {
			raw = raw[:4]
		}
		if year, err := strconv.Atoi(raw); err == nil {
			opts = append(opts, WithYear(year))
		}
	}
	if raw := pick("confidence_threshold", "threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return SeedTrack{}, fmt.Errorf("%w: invalid threshold %q", shared.ErrInvalidInput, raw)
		}
		opts = append(opts, WithThreshold(threshold))
	}

	return NewSeedTrack(
		pick("track", "track_name", "song", "title", "name"),
		pick("artist", "artist_name", "performer"),
		opts...,
	)
}

// String renders the seed as "Track - Artist".
func (s SeedTrack) String() string {
	return s.Track + " - " + s.Artist
}

// SearchQuery renders "track artist [album]".
func (s SeedTrack) SearchQuery() string {
	q := s.Track + " " + s.Artist
	if s.Album != "" {
		q += " " + s.Album
	}
	return q
}

// Key is the normalized "track|artist" identity of the seed.
func (s SeedTrack) Key() string {
	return shared.NormalizeTrackKey(s.Track, s.Artist)
}

// EffectiveThreshold returns the per-seed override, or def when none is set.
func (s SeedTrack) EffectiveThreshold(def float64) float64 {
	if s.Threshold != nil {
		return *s.Threshold
	}
	return def
}

func lastIndexFold(s, sep string) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}
