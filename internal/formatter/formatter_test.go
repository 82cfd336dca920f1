package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/seedmix/internal/matcher"
	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	th "github.com/desertthunder/seedmix/internal/testing"
)

func testPlaylist() *models.Playlist {
	return &models.Playlist{
		ID:          "pl123",
		Name:        "Similar to Hey Jude",
		Description: "Tempo around 120 BPM",
		Tracks: []models.PlaylistTrack{
			{Position: 1, ID: "seed", Title: "Hey Jude", Artist: "The Beatles", Year: 1968, Provider: "spotify", Similarity: 1, Era: "older", Seed: true},
			{Position: 2, ID: "t1", Title: "Let It Be", Artist: "The Beatles", Album: "Let It Be", Year: 1970, Provider: "spotify", Similarity: 0.912, Era: "older"},
			{Position: 3, ID: "t2", Title: "Imagine", Artist: "John Lennon", Provider: "lastfm", Similarity: 0.85, Era: "unknown"},
		},
		Metadata: models.GenerationMetadata{RequestedLength: 5, PoolSize: 12, Short: true, Elapsed: 1500 * time.Millisecond},
	}
}

func TestReadSeedsCSV(t *testing.T) {
	t.Run("Reads Loosely Named Headers", func(t *testing.T) {
		input := "Track Name,Artist,Album,Year\nHey Jude,The Beatles,,1968\nBohemian Rhapsody,Queen,A Night at the Opera,1975-10-31\n"
		seeds, err := ReadSeedsCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadSeedsCSV failed: %v", err)
		}
		if len(seeds) != 2 {
			t.Fatalf("expected 2 seeds, got %d", len(seeds))
		}
		if seeds[0].Track != "Hey Jude" || seeds[0].Artist != "The Beatles" || seeds[0].Year != 1968 {
			t.Errorf("unexpected first seed %+v", seeds[0])
		}
		if seeds[1].Album != "A Night at the Opera" || seeds[1].Year != 1975 {
			t.Errorf("unexpected second seed %+v", seeds[1])
		}
	})

	t.Run("Skips Invalid Rows", func(t *testing.T) {
		input := "track,artist,year\nYesterday,The Beatles,1965\n,Nobody,\nHelp,The Beatles,1700\nGirl,The Beatles,soon\n"
		seeds, err := ReadSeedsCSV(strings.NewReader(input))
		if len(seeds) != 2 {
			t.Fatalf("expected 2 valid seeds, got %d", len(seeds))
		}
		if seeds[1].Track != "Girl" || seeds[1].Year != 0 {
			t.Errorf("expected unparseable year to be dropped, got %+v", seeds[1])
		}
		if err == nil {
			t.Fatal("expected row errors")
		}
		if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "line 4") {
			t.Errorf("expected line numbers in %q", err)
		}
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := ReadSeedsCSV(strings.NewReader("")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("ReadSeedsFile", func(t *testing.T) {
		if _, err := ReadSeedsFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"", FormatJSON},
		{"CSV", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"text", FormatText},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; expected %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if FormatMarkdown.Ext() != "md" || FormatText.Ext() != "txt" {
		t.Error("unexpected extensions")
	}
}

func TestExporters(t *testing.T) {
	pl := testPlaylist()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(pl)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Position,ID,Title,Artist,Album,Year,Provider,Similarity,Era,Seed") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "2,t1,Let It Be,The Beatles,Let It Be,1970,spotify,0.912,older,false") {
			t.Errorf("CSV missing track row, got: %s", output)
		}
		if !strings.Contains(output, "3,t2,Imagine,John Lennon,,,lastfm,0.850,unknown,false") {
			t.Errorf("CSV should leave an unknown year empty, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(pl)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# Similar to Hey Jude",
			"**Description**: Tempo around 120 BPM",
			"**Tracks**: 3 of 5 requested",
			"## Tracks",
			"1. The Beatles - Hey Jude [1.00] *seed*",
			"2. The Beatles - Let It Be (Let It Be) [0.91]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(pl)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, "Playlist: Similar to Hey Jude") || !strings.Contains(output, "3. John Lennon - Imagine") {
			t.Errorf("unexpected text export: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := Export(pl, FormatJSON)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		var decoded models.Playlist
		if err := shared.UnmarshalJSON(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Name != pl.Name || len(decoded.Tracks) != 3 || !decoded.Metadata.Short {
			t.Errorf("unexpected decoded playlist %+v", decoded)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := Export(pl, Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	pl := testPlaylist()
	dir := t.TempDir()
	t.Chdir(dir)

	t.Run("Default Path", func(t *testing.T) {
		path, err := WriteExport(pl, FormatMarkdown, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "pl123.md" {
			t.Errorf("expected pl123.md, got %s", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("Nested Path", func(t *testing.T) {
		path, err := WriteExport(pl, FormatCSV, filepath.Join("out", "mix.csv"))
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertDirExists(t, "out")
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Let It Be") {
			t.Errorf("unexpected file content: %s", content)
		}
	})
}

func TestReports(t *testing.T) {
	hey, _ := models.NewSeedTrack("Hey Jude", "The Beatles")
	miss, _ := models.NewSeedTrack("Nothing", "Nobody")
	weak, _ := models.NewSeedTrack("Bohemian Rapsody", "Quen")

	best := models.Match{Candidate: models.CandidateTrack{Title: "Bohemian Rhapsody", Artist: "Queen"}, Score: 0.5}
	resolved := models.NewResolvedTrack(hey,
		models.Match{Candidate: models.CandidateTrack{ID: "1", Title: "Hey Jude", Artist: "The Beatles", Provider: "spotify"}, Score: 0.98},
		models.MethodExact, 0.7,
		[]models.Match{{Candidate: models.CandidateTrack{Title: "Hey Jude - Remastered", Artist: "The Beatles"}, Score: 0.9}},
	)
	rs := []models.Resolution{
		{Seed: hey, Track: resolved},
		{Seed: miss, Err: &matcher.UnresolvedError{Seed: miss, Reason: matcher.ReasonNoCandidates}},
		{Seed: weak, Err: &matcher.UnresolvedError{Seed: weak, Best: &best, Score: 0.5, Reason: matcher.ReasonBelowThreshold}},
	}
	stats := models.NewResolutionStats(rs)

	t.Run("ResolutionReport", func(t *testing.T) {
		out := ResolutionReport(rs, stats)
		for _, want := range []string{
			"Hey Jude - The Beatles",
			"spotify, exact, 0.98",
			"HIGH",
			"alt: Hey Jude - Remastered - The Beatles (0.90)",
			"no candidates",
			"below threshold (best: Bohemian Rhapsody - Queen, 0.50)",
			"Resolved 1/3 (33%)",
			"2 unresolved",
			"Providers: spotify 1",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("PlaylistSummary", func(t *testing.T) {
		out := PlaylistSummary(testPlaylist())
		for _, want := range []string{"Similar to Hey Jude", "1. The Beatles - Hey Jude", "(seed)", "Only 3 of 5 requested tracks found", "from 12 candidates"} {
			if !strings.Contains(out, want) {
				t.Errorf("summary missing %q:\n%s", want, out)
			}
		}
	})
}
