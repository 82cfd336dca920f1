package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/seedmix/internal/shared"
)

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewYouTubeService("", nil); svc.api.BaseURL() != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.api.BaseURL())
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			if svc := NewYouTubeService("http://localhost:9000/", nil); svc.api.BaseURL() != "http://localhost:9000" {
				t.Errorf("unexpected baseURL %s", svc.api.BaseURL())
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService("", nil); svc.Name() != ProviderYouTubeMusic {
			t.Errorf("expected name to be %s, got %s", ProviderYouTubeMusic, svc.Name())
		}
	})

	t.Run("Search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/search" {
				t.Errorf("expected /api/search, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("filter") != "songs" {
				t.Errorf("expected filter=songs, got %s", r.URL.Query().Get("filter"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"videoId":"yt1","title":"Bohemian Rhapsody","artists":[{"name":"Queen","id":"q"}],
				 "album":{"name":"A Night at the Opera","id":"al"},"year":"1975","duration_seconds":355,"views":"1.9B"},
				{"videoId":"","title":"Broken Entry"},
				{"videoId":"yt2","title":"Bohemian Rhapsody (Live)","artists":[{"name":"Queen","id":"q"}],"views":"12M"}
			]`))
		}))
		defer server.Close()

		svc := NewYouTubeService(server.URL, nil)
		tracks, err := svc.Search(context.Background(), "bohemian rhapsody queen", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		first := tracks[0]
		if first.ID != "yt1" || first.Artist != "Queen" || first.Album != "A Night at the Opera" {
			t.Errorf("unexpected track %+v", first)
		}
		if first.Year != 1975 || first.DurationMS != 355000 || first.Popularity != 100 {
			t.Errorf("unexpected metadata %+v", first)
		}
		if tracks[1].Popularity != 70 {
			t.Errorf("expected popularity 70 for 12M views, got %d", tracks[1].Popularity)
		}
	})

	t.Run("Search Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail":"proxy down"}`))
		}))
		defer server.Close()

		_, err := NewYouTubeService(server.URL, nil).Search(context.Background(), "x", 5)
		if !errors.Is(err, shared.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("Features", func(t *testing.T) {
		_, err := NewYouTubeService("", nil).Features(context.Background(), "yt1")
		if !errors.Is(err, shared.ErrFeaturesUnavailable) {
			t.Errorf("expected ErrFeaturesUnavailable, got %v", err)
		}
	})
}

func TestViewsPopularity(t *testing.T) {
	tests := map[string]int{
		"":           0,
		"1.9B":       100,
		"350M views": 85,
		"12M":        70,
		"2.5M":       55,
		"400K":       40,
		"12,345":     25,
		"900":        10,
		"lots":       0,
	}
	for in, want := range tests {
		if got := viewsPopularity(in); got != want {
			t.Errorf("viewsPopularity(%q) = %d, want %d", in, got, want)
		}
	}
}
