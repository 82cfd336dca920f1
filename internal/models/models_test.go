package models

import (
	"errors"
	"math"
	"testing"

	"github.com/desertthunder/seedmix/internal/shared"
)

func TestSeedTrack(t *testing.T) {
	t.Run("NewSeedTrack", func(t *testing.T) {
		t.Run("Collapses Whitespace", func(t *testing.T) {
			s, err := NewSeedTrack("  Bohemian   Rhapsody ", "Queen\t", WithAlbum(" A Night at  the Opera"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if s.Track != "Bohemian Rhapsody" || s.Artist != "Queen" {
				t.Errorf("unexpected fields: %+v", s)
			}
			if s.Album != "A Night at the Opera" {
				t.Errorf("expected collapsed album, got %q", s.Album)
			}
		})

		t.Run("Rejects Empty Fields", func(t *testing.T) {
			if _, err := NewSeedTrack(" ", "Queen"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if _, err := NewSeedTrack("Song", ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Rejects Bad Year", func(t *testing.T) {
			if _, err := NewSeedTrack("Song", "Artist", WithYear(1850)); err == nil {
				t.Error("expected error for year 1850")
			}
			if _, err := NewSeedTrack("Song", "Artist", WithYear(1975)); err != nil {
				t.Errorf("expected 1975 to be valid, got %v", err)
			}
		})

		t.Run("Rejects Bad Threshold", func(t *testing.T) {
			if _, err := NewSeedTrack("Song", "Artist", WithThreshold(1.5)); err == nil {
				t.Error("expected error for threshold 1.5")
			}
		})
	})

	t.Run("ParseSeedTrack", func(t *testing.T) {
		tests := []struct {
			input  string
			track  string
			artist string
		}{
			{"Bohemian Rhapsody - Queen", "Bohemian Rhapsody", "Queen"},
			{"Queen: Bohemian Rhapsody", "Bohemian Rhapsody", "Queen"},
			{"Bohemian Rhapsody by Queen", "Bohemian Rhapsody", "Queen"},
			{"Stand By Me BY Ben E. King", "Stand By Me", "Ben E. King"},
			{"Anti-Hero - Taylor Swift", "Anti-Hero", "Taylor Swift"},
			{"Yesterday", "Yesterday", UnknownArtist},
		}

		for _, tt := range tests {
			t.Run(tt.input, func(t *testing.T) {
				s, err := ParseSeedTrack(tt.input)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if s.Track != tt.track || s.Artist != tt.artist {
					t.Errorf("expected %q / %q, got %q / %q", tt.track, tt.artist, s.Track, s.Artist)
				}
			})
		}

		t.Run("Empty", func(t *testing.T) {
			if _, err := ParseSeedTrack("   "); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Round Trip", func(t *testing.T) {
			seeds := [][2]string{
				{"Bohemian Rhapsody", "Queen"},
				{"Don't Stop Me Now", "Queen"},
				{"Smells Like Teen Spirit", "Nirvana"},
				{"Paint It Black", "The Rolling Stones"},
			}
			for _, pair := range seeds {
				seed, err := NewSeedTrack(pair[0], pair[1])
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				parsed, err := ParseSeedTrack(seed.String())
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if parsed.Track != seed.Track || parsed.Artist != seed.Artist {
					t.Errorf("round trip of %q produced %+v", seed.String(), parsed)
				}
			}
		})
	})

	t.Run("SeedTrackFromMap", func(t *testing.T) {
		s, err := SeedTrackFromMap(map[string]string{
			"Track_Name":           "Hey Jude",
			"ARTIST":               "The Beatles",
			"release_date":         "1968-08-26",
			"confidence_threshold": "0.9",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Track != "Hey Jude" || s.Artist != "The Beatles" || s.Year != 1968 {
			t.Errorf("unexpected seed: %+v", s)
		}
		if got := s.EffectiveThreshold(0.7); got != 0.9 {
			t.Errorf("expected override 0.9, got %v", got)
		}

		s, err = SeedTrackFromMap(map[string]string{"title": "x", "artist": "y", "year": "abcd"})
		if err != nil {
			t.Fatalf("expected unparseable year to be dropped, got %v", err)
		}
		if s.Year != 0 {
			t.Errorf("expected no year, got %d", s.Year)
		}

		if _, err := SeedTrackFromMap(map[string]string{"title": "x", "artist": "y", "year": "1700"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected out of range year to be rejected, got %v", err)
		}
	})

	t.Run("SeedTrackFromMap Spaced Headers", func(t *testing.T) {
		s, err := SeedTrackFromMap(map[string]string{
			"Track Name":  "Bohemian Rhapsody",
			"Artist-Name": "Queen",
			"Album Name":  "A Night at the Opera",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Track != "Bohemian Rhapsody" || s.Artist != "Queen" || s.Album != "A Night at the Opera" {
			t.Errorf("unexpected seed: %+v", s)
		}
	})

	t.Run("Key And Query", func(t *testing.T) {
		s, _ := NewSeedTrack("Hey Jude", "The Beatles", WithAlbum("Single"))
		if s.Key() != "hey jude|the beatles" {
			t.Errorf("unexpected key %q", s.Key())
		}
		if s.SearchQuery() != "Hey Jude The Beatles Single" {
			t.Errorf("unexpected query %q", s.SearchQuery())
		}
		if s.EffectiveThreshold(0.7) != 0.7 {
			t.Error("expected default threshold without override")
		}
	})
}

func TestAudioFeatureVector(t *testing.T) {
	t.Run("Clamps Out Of Range", func(t *testing.T) {
		v := NewAudioFeatureVector(AudioFeatureVector{
			Tempo:    260,
			Energy:   1.4,
			Valence:  -0.2,
			Loudness: 5,
			Key:      14,
			Mode:     3,
		})
		if v.Tempo != 200 || v.Energy != 1 || v.Valence != 0 || v.Loudness != 0 {
			t.Errorf("expected clamped values, got %+v", v)
		}
		if v.Key != 11 || v.Mode != 1 {
			t.Errorf("expected key 11 mode 1, got %d %d", v.Key, v.Mode)
		}
	})

	t.Run("NaN Becomes Midpoint", func(t *testing.T) {
		v := NewAudioFeatureVector(AudioFeatureVector{Tempo: math.NaN(), Danceability: math.NaN(), Loudness: math.NaN()})
		if v.Tempo != 125 || v.Danceability != 0.5 || v.Loudness != -30 {
			t.Errorf("expected midpoints, got %+v", v)
		}
	})

	t.Run("Every Field In Range", func(t *testing.T) {
		inputs := []float64{math.Inf(-1), -1e9, -1, 0, 0.5, 1, 99, 1e9, math.Inf(1), math.NaN()}
		for _, x := range inputs {
			var raw AudioFeatureVector
			for _, f := range ContinuousFeatures() {
				raw.set(f, x)
			}
			raw.Key = int(math.Max(-100, math.Min(100, x)))
			v := raw.Clamped()
			for _, f := range ContinuousFeatures() {
				lo, hi := f.Bounds()
				if got := v.Value(f); got < lo || got > hi || math.IsNaN(got) {
					t.Errorf("%s = %v outside [%v, %v] for input %v", f, got, lo, hi, x)
				}
			}
			if v.Key < 0 || v.Key > MaxKey || (v.Mode != 0 && v.Mode != 1) {
				t.Errorf("discrete fields out of range: key %d mode %d", v.Key, v.Mode)
			}
		}
	})

	t.Run("Similarity", func(t *testing.T) {
		a := NewAudioFeatureVector(AudioFeatureVector{Tempo: 120, Energy: 0.8, Valence: 0.6, Danceability: 0.7})
		if s := a.Similarity(a); s != 1 {
			t.Errorf("expected self similarity 1, got %v", s)
		}
		b := a.With(Energy, 0.1).With(Tempo, 60)
		if s := a.Similarity(b); s <= 0 || s >= 1 {
			t.Errorf("expected similarity in (0,1), got %v", s)
		}
	})

	t.Run("Distance Is Stable", func(t *testing.T) {
		a := NewAudioFeatureVector(AudioFeatureVector{Tempo: 97, Energy: 0.31, Valence: 0.77, Danceability: 0.13, Acousticness: 0.59, Liveness: 0.21})
		b := NewAudioFeatureVector(AudioFeatureVector{Tempo: 143, Energy: 0.83, Valence: 0.09, Danceability: 0.91, Speechiness: 0.37, Instrumentalness: 0.44})
		want := a.Distance(b)
		for range 200 {
			if got := a.Distance(b); got != want {
				t.Fatalf("Distance changed between calls: %v then %v", want, got)
			}
		}
	})
}

func TestRange(t *testing.T) {
	r := Range{Low: 0.4, High: 0.6, Window: 0.2}

	tests := []struct {
		x    float64
		want float64
	}{
		{0.5, 0},
		{0.4, 0},
		{0.7, 0.5},
		{0.3, 0.5},
		{1.0, 1},
	}
	for _, tt := range tests {
		if got := r.Distance(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}

	if !(Range{Low: 1, High: 1}).Contains(1) {
		t.Error("expected point range to contain its value")
	}
	if (Range{Low: 1, High: 1}).Distance(1.1) != 1 {
		t.Error("expected zero window to yield full distance outside")
	}
}

func TestMatchMethod(t *testing.T) {
	for _, m := range MatchMethods() {
		b, err := m.MarshalText()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var got MatchMethod
		if err := got.UnmarshalText(b); err != nil || got != m {
			t.Errorf("expected %v, got %v (%v)", m, got, err)
		}
	}
	if _, err := ParseMatchMethod("psychic"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestResolutionStats(t *testing.T) {
	seed, _ := NewSeedTrack("Song", "Artist")
	high := NewResolvedTrack(seed, Match{Candidate: CandidateTrack{ID: "1", Provider: "spotify"}, Score: 0.96}, MethodExact, 0.7, nil)
	low := NewResolvedTrack(seed, Match{Candidate: CandidateTrack{ID: "2", Provider: "lastfm"}, Score: 0.5}, MethodFuzzy, 0.7, nil)

	rs := []Resolution{
		{Seed: seed, Track: high},
		{Seed: seed, Track: low},
		{Seed: seed, Err: shared.ErrUnresolved},
	}

	st := NewResolutionStats(rs)
	if st.Total != 3 || st.Resolved != 2 || st.Unresolved != 1 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if st.ByTier[TierHigh] != 1 || st.ByTier[TierLow] != 1 {
		t.Errorf("unexpected tiers: %v", st.ByTier)
	}
	if st.ByMethod["exact"] != 1 || st.ByMethod["fuzzy"] != 1 {
		t.Errorf("unexpected methods: %v", st.ByMethod)
	}
	if st.NeedsConfirmation != 1 {
		t.Errorf("expected 1 needing confirmation, got %d", st.NeedsConfirmation)
	}
	if math.Abs(st.AverageConfidence-0.73) > 1e-9 {
		t.Errorf("expected average 0.73, got %v", st.AverageConfidence)
	}
	if len(ResolvedTracks(rs)) != 2 {
		t.Error("expected 2 resolved tracks")
	}
}

func TestTierFor(t *testing.T) {
	tests := map[float64]ConfidenceTier{
		0.95: TierHigh,
		0.8:  TierHigh,
		0.7:  TierMedium,
		0.45: TierLow,
		0.1:  TierNone,
	}
	for score, want := range tests {
		if got := TierFor(score); got != want {
			t.Errorf("TierFor(%v) = %v, want %v", score, got, want)
		}
	}
}
