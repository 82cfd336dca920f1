// package formatter reads seed files and renders playlists and resolution reports (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
)

// Format is a playlist export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}
}

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ReadSeedsCSV reads seeds from CSV with a header row.
//
// Rows that fail validation are skipped; their errors are joined into the returned error together
// with their line numbers, so callers may keep the valid seeds.
func ReadSeedsCSV(r io.Reader) ([]models.SeedTrack, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty seed file", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var (
		seeds []models.SeedTrack
		errs  []error
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return seeds, fmt.Errorf("failed to read CSV record: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		seed, err := models.SeedTrackFromMap(fields)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		seeds = append(seeds, seed)
	}
	return seeds, errors.Join(errs...)
}

// ReadSeedsFile opens path and reads it with [ReadSeedsCSV].
func ReadSeedsFile(path string) ([]models.SeedTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return ReadSeedsCSV(f)
}

// Export renders pl in format.
func Export(pl *models.Playlist, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(pl, true)
	case FormatCSV:
		return ExportToCSV(pl)
	case FormatMarkdown:
		return ExportToMarkdown(pl)
	case FormatText:
		return ExportToText(pl)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// ExportToJSON renders the whole playlist including its profile and generation metadata.
func ExportToJSON(pl *models.Playlist, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(pl, pretty)
}

// ExportToCSV renders tracks with columns: Position, ID, Title, Artist, Album, Year, Provider, Similarity, Era, Seed
func ExportToCSV(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artist", "Album", "Year", "Provider", "Similarity", "Era", "Seed"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range pl.Tracks {
		year := ""
		if track.Year > 0 {
			year = strconv.Itoa(track.Year)
		}
		record := []string{
			strconv.Itoa(track.Position),
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			year,
			track.Provider,
			strconv.FormatFloat(track.Similarity, 'f', 3, 64),
			track.Era,
			strconv.FormatBool(track.Seed),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the playlist as a Markdown document.
func ExportToMarkdown(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", pl.Name)
	if pl.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", pl.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d", pl.Len())
	if pl.Metadata.Short {
		fmt.Fprintf(&buf, " of %d requested", pl.Metadata.RequestedLength)
	}
	buf.WriteString("\n")
	if pl.Metadata.Degraded {
		buf.WriteString("**Note**: every provider failed during the search\n")
	}
	buf.WriteString("\n## Tracks\n\n")

	for _, track := range pl.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		seedPart := ""
		if track.Seed {
			seedPart = " *seed*"
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%.2f]%s\n", track.Position, track.Artist, track.Title, albumPart, track.Similarity, seedPart)
	}

	return buf.Bytes(), nil
}

// ExportToText renders the playlist as plain text.
func ExportToText(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", pl.Name)
	if pl.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", pl.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", pl.Len())

	for _, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", track.Position, track.Artist, track.Title)
	}

	return buf.Bytes(), nil
}

// WriteExport writes pl to path in format.
//
// Defaults to {playlist.ID}.{ext} when path is empty; missing parent directories are created.
func WriteExport(pl *models.Playlist, format Format, path string) (string, error) {
	if path == "" {
		path = pl.ID + "." + format.Ext()
	}

	data, err := Export(pl, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}
