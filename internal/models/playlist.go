package models

import "time"

// SimilarityScore is a candidate scored against a feature profile.
type SimilarityScore struct {
	Candidate    CandidateTrack     `json:"candidate"`
	Features     AudioFeatureVector `json:"features"`
	Score        float64            `json:"score"`
	Breakdown    map[string]float64 `json:"breakdown"` // per-feature weighted contribution
	Preferred    bool               `json:"preferred,omitempty"`
	ProviderRank int                `json:"provider_rank"`
}

// PlaylistTrack is one entry of a generated playlist.
type PlaylistTrack struct {
	Position   int                `json:"position"`
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Artist     string             `json:"artist"`
	Album      string             `json:"album,omitempty"`
	Year       int                `json:"year,omitempty"`
	Provider   string             `json:"provider"`
	Popularity int                `json:"popularity"`
	Similarity float64            `json:"similarity"`
	Adjusted   float64            `json:"adjusted_score"`
	Era        string             `json:"era"`
	Seed       bool               `json:"seed,omitempty"`
	Features   AudioFeatureVector `json:"features"`
}

// GenerationMetadata records how a playlist was produced.
type GenerationMetadata struct {
	GeneratedAt     time.Time     `json:"generated_at"`
	SeedCount       int           `json:"seed_count"`
	RequestedLength int           `json:"requested_length"`
	PoolSize        int           `json:"pool_size"`
	Queries         []string      `json:"queries,omitempty"`
	Providers       []string      `json:"providers,omitempty"`
	Short           bool          `json:"short,omitempty"`
	Degraded        bool          `json:"degraded,omitempty"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Playlist is the ordered result of a generation run.
type Playlist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Tracks      []PlaylistTrack     `json:"tracks"`
	Profile     AudioFeatureProfile `json:"profile"`
	Metadata    GenerationMetadata  `json:"metadata"`
}

// ArtistCounts returns the number of tracks per artist.
func (p Playlist) ArtistCounts() map[string]int {
	counts := make(map[string]int)
	for _, t := range p.Tracks {
		counts[t.Artist]++
	}
	return counts
}

// Len is the number of tracks in the playlist.
func (p Playlist) Len() int { return len(p.Tracks) }
