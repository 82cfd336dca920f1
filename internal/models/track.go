package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/seedmix/internal/shared"
)

// MatchMethod is the resolution stage that produced a match.
type MatchMethod int

const (
	MethodExact MatchMethod = iota + 1
	MethodNormalized
	MethodPartial
	MethodFuzzy
)

// MatchMethods lists the stages in the order they are attempted.
func MatchMethods() []MatchMethod {
	return []MatchMethod{MethodExact, MethodNormalized, MethodPartial, MethodFuzzy}
}

func (m MatchMethod) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodNormalized:
		return "normalized"
	case MethodPartial:
		return "partial"
	case MethodFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// ParseMatchMethod is the inverse of [MatchMethod.String].
func ParseMatchMethod(s string) (MatchMethod, error) {
	for _, m := range MatchMethods() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown match method %q", shared.ErrInvalidInput, s)
}

func (m MatchMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MatchMethod) UnmarshalText(b []byte) error {
	parsed, err := ParseMatchMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ConfidenceTier buckets a confidence score for display.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
	TierNone   ConfidenceTier = "none"
)

// TierFor maps a confidence score onto its tier.
func TierFor(confidence float64) ConfidenceTier {
	switch {
	case confidence >= 0.8:
		return TierHigh
	case confidence >= 0.6:
		return TierMedium
	case confidence >= 0.4:
		return TierLow
	default:
		return TierNone
	}
}

// CandidateTrack is a catalog entry returned by a provider search.
type CandidateTrack struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Artist     string              `json:"artist"`
	Album      string              `json:"album,omitempty"`
	Year       int                 `json:"year,omitempty"`
	Genres     []string            `json:"genres,omitempty"`
	Popularity int                 `json:"popularity"`
	DurationMS int                 `json:"duration_ms,omitempty"`
	ISRC       string              `json:"isrc,omitempty"`
	Provider   string              `json:"provider"`
	Features   *AudioFeatureVector `json:"features,omitempty"`
}

// Key identifies the candidate across providers by title and artist.
func (c CandidateTrack) Key() string {
	return shared.NormalizeTrackKey(c.Title, c.Artist)
}

// String renders "Title - Artist".
func (c CandidateTrack) String() string {
	return c.Title + " - " + c.Artist
}

// Match is a candidate scored against a seed.
//
// Score is the provider-weighted similarity used for ranking and acceptance; RawScore is the
// unweighted 0.6/0.4 blend of TrackScore and ArtistScore.
type Match struct {
	Candidate    CandidateTrack `json:"candidate"`
	Score        float64        `json:"score"`
	RawScore     float64        `json:"raw_score"`
	TrackScore   float64        `json:"track_score"`
	ArtistScore  float64        `json:"artist_score"`
	ProviderRank int            `json:"provider_rank"` // position in configured provider order
}

// ResolvedTrack binds a seed to a catalog entry.
type ResolvedTrack struct {
	Seed              SeedTrack      `json:"seed"`
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Artist            string         `json:"artist"`
	Album             string         `json:"album,omitempty"`
	Year              int            `json:"year,omitempty"`
	Genres            []string       `json:"genres,omitempty"`
	Popularity        int            `json:"popularity"`
	Provider          string         `json:"provider"`
	Confidence        float64        `json:"confidence"`
	Method            MatchMethod    `json:"method"`
	Tier              ConfidenceTier `json:"tier"`
	NeedsConfirmation bool           `json:"needs_confirmation,omitempty"`
	Alternatives      []Match        `json:"alternatives,omitempty"`

	Features *AudioFeatureVector `json:"features,omitempty"`
}

// NewResolvedTrack builds a resolved track from the winning match.
func NewResolvedTrack(seed SeedTrack, m Match, method MatchMethod, threshold float64, alternatives []Match) *ResolvedTrack {
	c := m.Candidate
	return &ResolvedTrack{
		Seed:              seed,
		ID:                c.ID,
		Title:             c.Title,
		Artist:            c.Artist,
		Album:             c.Album,
		Year:              c.Year,
		Genres:            c.Genres,
		Popularity:        c.Popularity,
		Provider:          c.Provider,
		Confidence:        m.Score,
		Method:            method,
		Tier:              TierFor(m.Score),
		NeedsConfirmation: m.Score < seed.EffectiveThreshold(threshold),
		Alternatives:      alternatives,
		Features:          c.Features,
	}
}

// Candidate returns the catalog entry the track was resolved to.
func (r ResolvedTrack) Candidate() CandidateTrack {
	return CandidateTrack{
		ID:         r.ID,
		Title:      r.Title,
		Artist:     r.Artist,
		Album:      r.Album,
		Year:       r.Year,
		Genres:     r.Genres,
		Popularity: r.Popularity,
		Provider:   r.Provider,
		Features:   r.Features,
	}
}

func (r ResolvedTrack) String() string {
	return fmt.Sprintf("%s - %s [%s %.2f]", r.Title, r.Artist, r.Method, r.Confidence)
}

// Resolution is the outcome of resolving one seed: exactly one of Track and Err is set.
type Resolution struct {
	Seed  SeedTrack      `json:"seed"`
	Track *ResolvedTrack `json:"track,omitempty"`
	Err   error          `json:"-"`
}

// Resolved reports whether the seed was bound to a catalog entry.
func (r Resolution) Resolved() bool {
	return r.Track != nil && r.Err == nil
}

// ResolvedTracks returns the resolved tracks of rs in order.
func ResolvedTracks(rs []Resolution) []ResolvedTrack {
	out := make([]ResolvedTrack, 0, len(rs))
	for _, r := range rs {
		if r.Resolved() {
			out = append(out, *r.Track)
		}
	}
	return out
}
