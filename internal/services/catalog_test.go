package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	tu "github.com/desertthunder/seedmix/internal/testing"
)

func catalogTracks() []models.CandidateTrack {
	return []models.CandidateTrack{
		{ID: "1", Title: "Bohemian Rhapsody", Artist: "Queen", Genres: []string{"Rock"}, Popularity: 90, Features: tu.Vector(144, 0.4, 0.2)},
		{ID: "2", Title: "Don't Stop Me Now", Artist: "Queen", Genres: []string{"rock"}, Popularity: 85, Features: tu.Vector(156, 0.9, 0.8)},
		{ID: "3", Title: "Clair de Lune", Artist: "Claude Debussy", Genres: []string{"classical"}, Popularity: 60, Features: tu.Vector(70, 0.1, 0.3)},
		{ID: "4", Title: "Untitled", Artist: "Nobody", Popularity: 1},
		{Title: "No ID", Artist: "Dropped"},
	}
}

func TestStaticCatalog(t *testing.T) {
	c := NewStaticCatalog("", catalogTracks())

	t.Run("Defaults", func(t *testing.T) {
		if c.Name() != ProviderCatalog {
			t.Errorf("expected name %s, got %s", ProviderCatalog, c.Name())
		}
		if c.Len() != 4 {
			t.Errorf("expected tracks without IDs to be dropped, got %d", c.Len())
		}
	})

	t.Run("Search By Title And Artist", func(t *testing.T) {
		tracks, err := c.Search(context.Background(), "Bohemian Rhapsody Queen", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) == 0 || tracks[0].ID != "1" {
			t.Fatalf("expected Bohemian Rhapsody first, got %v", tracks)
		}
		if tracks[0].Provider != ProviderCatalog {
			t.Errorf("expected provider to default to catalog, got %s", tracks[0].Provider)
		}
	})

	t.Run("Search By Genre", func(t *testing.T) {
		tracks, err := c.Search(context.Background(), "genre:rock", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 || tracks[0].ID != "1" {
			t.Errorf("expected both rock tracks by popularity, got %v", tracks)
		}
	})

	t.Run("Search By Mood Keyword", func(t *testing.T) {
		tracks, err := c.Search(context.Background(), "calm", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "3" {
			t.Errorf("expected only the low energy track, got %v", tracks)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		tracks, _ := c.Search(context.Background(), "queen", 1)
		if len(tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(tracks))
		}
	})

	t.Run("Features", func(t *testing.T) {
		v, err := c.Features(context.Background(), "3")
		if err != nil || v.Tempo != 70 {
			t.Errorf("unexpected features %+v (%v)", v, err)
		}
		if _, err := c.Features(context.Background(), "4"); !errors.Is(err, shared.ErrFeaturesUnavailable) {
			t.Errorf("expected ErrFeaturesUnavailable, got %v", err)
		}
		if _, err := c.Features(context.Background(), "nope"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Search(ctx, "queen", 5); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLoadStaticCatalog(t *testing.T) {
	dir := t.TempDir()

	t.Run("Valid File", func(t *testing.T) {
		data, err := shared.MarshalJSON(catalogTracks(), false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		path := filepath.Join(dir, "catalog.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("failed to write catalog: %v", err)
		}

		c, err := LoadStaticCatalog("local", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Name() != "local" || c.Len() != 4 {
			t.Errorf("unexpected catalog %s with %d tracks", c.Name(), c.Len())
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadStaticCatalog("local", filepath.Join(dir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		_ = os.WriteFile(path, []byte("{"), 0o644)
		if _, err := LoadStaticCatalog("local", path); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
