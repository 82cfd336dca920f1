package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/seedmix/internal/diversity"
	"github.com/desertthunder/seedmix/internal/matcher"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/desertthunder/seedmix/internal/similarity"
	tu "github.com/desertthunder/seedmix/internal/testing"
)

type stubResolver struct {
	calls  atomic.Int32
	delay  func(seed models.SeedTrack) time.Duration
	onCall func()
}

func (s *stubResolver) Resolve(ctx context.Context, seed models.SeedTrack) (*models.ResolvedTrack, error) {
	s.calls.Add(1)
	if s.onCall != nil {
		s.onCall()
	}
	if s.delay != nil {
		time.Sleep(s.delay(seed))
	}
	if strings.HasPrefix(seed.Track, "Missing") {
		return nil, &matcher.UnresolvedError{Seed: seed, Reason: matcher.ReasonNoCandidates}
	}
	m := models.Match{Candidate: models.CandidateTrack{ID: "id-" + seed.Track, Title: seed.Track, Artist: seed.Artist, Provider: "fake"}, Score: 0.9}
	return models.NewResolvedTrack(seed, m, models.MethodExact, 0.7, nil), nil
}

type memStore struct {
	mu   sync.Mutex
	data map[string]*models.ResolvedTrack
}

func (m *memStore) GetResolution(_ context.Context, seed models.SeedTrack) (*models.ResolvedTrack, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[seed.Key()]
	return t, ok, nil
}

func (m *memStore) PutResolution(_ context.Context, t *models.ResolvedTrack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[t.Seed.Key()] = t
	return nil
}

func seeds(t *testing.T, names ...string) []models.SeedTrack {
	t.Helper()
	out := make([]models.SeedTrack, len(names))
	for i, n := range names {
		s, err := models.NewSeedTrack(n, "Artist "+n)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = s
	}
	return out
}

func TestResolveSeeds(t *testing.T) {
	ctx := context.Background()

	t.Run("Input Order And Partial Success", func(t *testing.T) {
		resolver := &stubResolver{delay: func(s models.SeedTrack) time.Duration {
			return time.Duration(5-len(s.Track)%5) * time.Millisecond
		}}
		engine := NewPlaylistEngine(resolver, nil, EngineOptions{Workers: 3})
		in := seeds(t, "A", "Missing One", "BB", "CCC", "Missing Two", "DDDD")

		progress := make(chan ProgressUpdate, 20)
		out, stats, err := engine.ResolveSeeds(ctx, progress, in)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out) != len(in) {
			t.Fatalf("expected %d results, got %d", len(in), len(out))
		}
		for i, r := range out {
			if r.Seed != in[i] {
				t.Errorf("result %d out of order: %s", i, r.Seed)
			}
		}
		if out[1].Resolved() || !errors.Is(out[1].Err, shared.ErrUnresolved) {
			t.Errorf("expected seed 1 unresolved, got %+v", out[1])
		}
		if stats.Resolved != 4 || stats.Unresolved != 2 {
			t.Errorf("unexpected stats %+v", stats)
		}
		if len(progress) != len(in)+1 {
			t.Errorf("expected %d progress updates, got %d", len(in)+1, len(progress))
		}
	})

	t.Run("Store Hits Skip Resolver", func(t *testing.T) {
		resolver := &stubResolver{}
		store := &memStore{data: make(map[string]*models.ResolvedTrack)}
		engine := NewPlaylistEngine(resolver, nil, EngineOptions{Store: store})
		in := seeds(t, "A", "B")

		if _, _, err := engine.ResolveSeeds(ctx, nil, in); err != nil {
			t.Fatal(err)
		}
		if _, _, err := engine.ResolveSeeds(ctx, nil, in); err != nil {
			t.Fatal(err)
		}
		if got := resolver.calls.Load(); got != 2 {
			t.Errorf("expected 2 resolver calls across both runs, got %d", got)
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		resolver := &stubResolver{onCall: cancel}
		engine := NewPlaylistEngine(resolver, nil, EngineOptions{Workers: 1})
		in := seeds(t, "A", "B", "C")

		out, _, err := engine.ResolveSeeds(cctx, nil, in)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(out) != 3 {
			t.Fatalf("expected a result per seed, got %d", len(out))
		}
		var unresolved *matcher.UnresolvedError
		if !errors.As(out[2].Err, &unresolved) || unresolved.Reason != matcher.ReasonCanceled {
			t.Errorf("expected the last seed to be canceled, got %+v", out[2])
		}
		if resolver.calls.Load() != 1 {
			t.Errorf("expected workers to stop after cancellation, got %d calls", resolver.calls.Load())
		}
	})

	t.Run("Every Provider Times Out", func(t *testing.T) {
		slow := tu.NewFakeCatalog(services.ProviderSpotify, models.CandidateTrack{ID: "bh", Title: "Bohemian Rhapsody", Artist: "Queen"})
		slow.Delay = time.Second
		pool := services.NewPool([]*services.Provider{
			services.NewProvider(slow, services.ProviderOptions{MaxFailures: 1000}),
		}, services.PoolOptions{Timeout: 2 * time.Millisecond})
		resolver, err := matcher.NewResolver(pool, nil, matcher.DefaultConfig(), nil)
		if err != nil {
			t.Fatal(err)
		}
		engine := NewPlaylistEngine(resolver, nil, EngineOptions{})

		in := []models.SeedTrack{{Track: "Bohemian Rhapsody", Artist: "Queen"}, {Track: "Yesterday", Artist: "The Beatles"}}
		out, stats, err := engine.ResolveSeeds(ctx, nil, in)
		if err != nil {
			t.Fatalf("expected the batch to succeed, got %v", err)
		}
		for _, r := range out {
			if !errors.Is(r.Err, shared.ErrUnresolved) {
				t.Errorf("expected %s unresolved, got %v", r.Seed, r.Err)
			}
		}
		if stats.Resolved != 0 {
			t.Errorf("expected nothing resolved, got %d", stats.Resolved)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		engine := NewPlaylistEngine(&stubResolver{}, nil, EngineOptions{})
		out, stats, err := engine.ResolveSeeds(ctx, nil, nil)
		if err != nil || len(out) != 0 || stats.Total != 0 {
			t.Errorf("expected an empty batch, got %v %+v %v", out, stats, err)
		}
	})
}

func rockTrack(id, artist string, year int, tempo float64) models.CandidateTrack {
	return models.CandidateTrack{
		ID: id, Title: "Song " + id, Artist: artist, Year: year, Genres: []string{"rock"},
		Popularity: 50, Features: tu.Vector(tempo, 0.5, 0.5),
	}
}

func generationEngine(catalog *tu.FakeCatalog) *PlaylistEngine {
	pool := services.NewPool([]*services.Provider{services.NewProvider(catalog, services.ProviderOptions{MaxFailures: 1000})}, services.PoolOptions{})
	return NewPlaylistEngine(nil, similarity.NewEngine(pool, nil, nil), EngineOptions{Providers: []string{catalog.Name()}})
}

func seedTracks() []models.ResolvedTrack {
	return []models.ResolvedTrack{{
		ID: "seed", Title: "Seed Song", Artist: "Seed Band", Provider: "fake", Year: 2015,
		Genres: []string{"rock"}, Features: tu.Vector(120, 0.5, 0.5),
	}}
}

func TestGeneratePlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("Builds Diverse Playlist", func(t *testing.T) {
		catalog := tu.NewFakeCatalog("fake")
		catalog.Add(rockTrack("seed", "Seed Band", 2015, 120))
		for i, artist := range []string{"A", "A", "A", "B", "B", "C", "D", "E"} {
			catalog.Add(rockTrack(string(rune('a'+i)), artist, 2000+i*3, 110+float64(i)*2))
		}
		engine := generationEngine(catalog)

		progress := make(chan ProgressUpdate, 50)
		pl, err := engine.GeneratePlaylist(ctx, progress, seedTracks(), 5, similarity.DefaultConfig(), diversity.DefaultSettings())
		if err != nil {
			t.Fatalf("expected a playlist, got %v", err)
		}
		if pl.Len() != 5 || pl.Metadata.Short {
			t.Errorf("expected 5 tracks, got %d (short=%v)", pl.Len(), pl.Metadata.Short)
		}
		for artist, n := range pl.ArtistCounts() {
			if n > 2 {
				t.Errorf("artist %s appears %d times", artist, n)
			}
		}
		for _, tr := range pl.Tracks {
			if tr.ID == "seed" {
				t.Error("expected the seed to be excluded")
			}
		}
		if pl.Name != "Similar to Seed Song" {
			t.Errorf("unexpected name %q", pl.Name)
		}
		if pl.ID == "" || pl.Metadata.SeedCount != 1 || pl.Metadata.RequestedLength != 5 {
			t.Errorf("unexpected metadata %+v", pl.Metadata)
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("Short Playlist", func(t *testing.T) {
		catalog := tu.NewFakeCatalog("fake")
		for i := range 10 {
			catalog.Add(rockTrack(string(rune('a'+i)), "Only Artist", 2010, 120))
		}
		engine := generationEngine(catalog)

		pl, err := engine.GeneratePlaylist(ctx, nil, seedTracks(), 5, similarity.DefaultConfig(), diversity.DefaultSettings())
		if err != nil {
			t.Fatalf("expected a playlist, got %v", err)
		}
		if pl.Len() != 2 || !pl.Metadata.Short {
			t.Errorf("expected a short playlist of 2, got %d (short=%v)", pl.Len(), pl.Metadata.Short)
		}
	})

	t.Run("Degraded", func(t *testing.T) {
		catalog := tu.NewFakeCatalog("fake")
		catalog.Err = shared.ErrProviderUnavailable
		engine := generationEngine(catalog)

		settings := diversity.DefaultSettings()
		settings.IncludeSeeds = true
		pl, err := engine.GeneratePlaylist(ctx, nil, seedTracks(), 5, similarity.DefaultConfig(), settings)
		if err != nil {
			t.Fatalf("expected a degraded playlist, got %v", err)
		}
		if !pl.Metadata.Degraded {
			t.Error("expected the degraded flag")
		}
		if pl.Len() != 1 || !pl.Tracks[0].Seed {
			t.Errorf("expected only the included seed, got %+v", pl.Tracks)
		}
	})

	t.Run("Invalid Weights Rejected Before Search", func(t *testing.T) {
		catalog := tu.NewFakeCatalog("fake", rockTrack("a", "A", 2010, 120))
		engine := generationEngine(catalog)

		cfg := similarity.DefaultConfig()
		cfg.Weights.Tempo = 0.05
		if _, err := engine.GeneratePlaylist(ctx, nil, seedTracks(), 5, cfg, diversity.DefaultSettings()); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
		if catalog.Calls() != 0 {
			t.Errorf("expected no searches, got %d", catalog.Calls())
		}
	})

	t.Run("Non-Positive Length", func(t *testing.T) {
		engine := generationEngine(tu.NewFakeCatalog("fake"))
		if _, err := engine.GeneratePlaylist(ctx, nil, seedTracks(), 0, similarity.DefaultConfig(), diversity.DefaultSettings()); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestPlaylistName(t *testing.T) {
	track := func(title, artist string) models.ResolvedTrack {
		return models.ResolvedTrack{Title: title, Artist: artist}
	}

	tests := []struct {
		name  string
		seeds []models.ResolvedTrack
		want  string
	}{
		{"None", nil, "Generated Playlist"},
		{"One", []models.ResolvedTrack{track("Hey Jude", "The Beatles")}, "Similar to Hey Jude"},
		{"Three", []models.ResolvedTrack{track("A", "X"), track("B", "Y"), track("C", "Z")}, "Similar to A, B, C"},
		{"Few Artists", []models.ResolvedTrack{track("A", "X"), track("B", "X"), track("C", "Y"), track("D", "the x")}, "Similar to X, Y"},
		{"Many Artists", []models.ResolvedTrack{track("A", "W"), track("B", "X"), track("C", "Y"), track("D", "Z")}, "Generated from 4 tracks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaylistName(tt.seeds); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
