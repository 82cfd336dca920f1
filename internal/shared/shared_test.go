package shared

import (
	"errors"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist \t Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tc := map[string]log.Level{
		"":         log.InfoLevel,
		"debug":    log.DebugLevel,
		"WARN":     log.WarnLevel,
		"nonsense": log.InfoLevel,
	}
	for in, want := range tc {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := ValidateStruct(DefaultConfig()); err != nil {
			t.Fatalf("expected default config to validate, got %v", err)
		}
	})

	t.Run("reports out of range values", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Resolution.ConfidenceThreshold = 1.5
		cfg.Diversity.MaxPerArtist = 0

		err := ValidateStruct(cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
