// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
)

// FakeCatalog is an in-memory test double for services.CatalogSearch.
//
// Searches return canned results registered with [FakeCatalog.On] or, failing that, every track whose
// normalized title or artist appears in the query. Delay and Err inject slow and failing providers.
type FakeCatalog struct {
	mu       sync.Mutex
	name     string
	tracks   []models.CandidateTrack
	canned   map[string][]models.CandidateTrack
	features map[string]models.AudioFeatureVector
	queries  []string

	Delay time.Duration
	Err   error
}

// NewFakeCatalog creates a fake provider called name serving tracks.
func NewFakeCatalog(name string, tracks ...models.CandidateTrack) *FakeCatalog {
	f := &FakeCatalog{
		name:     name,
		canned:   make(map[string][]models.CandidateTrack),
		features: make(map[string]models.AudioFeatureVector),
	}
	for _, t := range tracks {
		f.Add(t)
	}
	return f
}

// Add registers a track, attributing it to the fake provider.
func (f *FakeCatalog) Add(t models.CandidateTrack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.Provider = f.name
	f.tracks = append(f.tracks, t)
	if t.Features != nil {
		f.features[t.ID] = *t.Features
	}
}

// On registers canned results for an exact query.
func (f *FakeCatalog) On(query string, results ...models.CandidateTrack) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range results {
		results[i].Provider = f.name
	}
	f.canned[query] = results
	return f
}

// SetFeatures registers features for a track ID.
func (f *FakeCatalog) SetFeatures(id string, v models.AudioFeatureVector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.features[id] = v
}

func (f *FakeCatalog) Name() string { return f.name }

func (f *FakeCatalog) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	delay, failure := f.Delay, f.Err
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if failure != nil {
		return nil, failure
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out, ok := f.canned[query]
	if !ok {
		q := " " + fold(query) + " "
		genre, isGenre := strings.CutPrefix(query, "genre:")
		for _, t := range f.tracks {
			switch {
			case isGenre && slices.ContainsFunc(t.Genres, func(g string) bool { return strings.EqualFold(g, genre) }):
				out = append(out, t)
			case !isGenre && (strings.Contains(q, " "+fold(t.Title)+" ") || strings.Contains(q, " "+fold(t.Artist)+" ")):
				out = append(out, t)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return slices.Clone(out), nil
}

func (f *FakeCatalog) Features(ctx context.Context, trackID string) (models.AudioFeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return models.AudioFeatureVector{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.features[trackID]
	if !ok {
		return models.AudioFeatureVector{}, fmt.Errorf("%w: %s", shared.ErrFeaturesUnavailable, trackID)
	}
	return v, nil
}

// Calls is the number of Search calls received.
func (f *FakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// Queries returns the queries received, in order.
func (f *FakeCatalog) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queries)
}

// FakeRelator is a [FakeCatalog] that also answers similar-artist lookups.
type FakeRelator struct {
	*FakeCatalog
	Similar map[string][]string
}

func (f *FakeRelator) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names := f.Similar[fold(artist)]
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (f *FakeRelator) TopTracks(ctx context.Context, artist string, limit int) ([]models.CandidateTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CandidateTrack
	for _, t := range f.tracks {
		if fold(t.Artist) == fold(artist) {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Vector builds a clamped feature vector from tempo, energy and valence with mid-range defaults.
func Vector(tempo, energy, valence float64) *models.AudioFeatureVector {
	v := models.NewAudioFeatureVector(models.AudioFeatureVector{
		Tempo:            tempo,
		Energy:           energy,
		Valence:          valence,
		Danceability:     0.5,
		Acousticness:     0.3,
		Instrumentalness: 0.1,
		Liveness:         0.1,
		Speechiness:      0.05,
		Loudness:         -8,
		Key:              5,
		Mode:             1,
	})
	return &v
}

func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers, such as loggers derived with With.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
