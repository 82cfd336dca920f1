package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
	tu "github.com/desertthunder/seedmix/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// advance moves a table's clock forward by d.
func advance(tb *table, d time.Duration) {
	now := tb.now()
	tb.now = func() time.Time { return now.Add(d) }
}

func TestFeatureRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Put And Get", func(t *testing.T) {
		repo := NewFeatureRepository(setupTestDB(t), time.Hour)
		v := *tu.Vector(128, 0.7, 0.3)

		if err := repo.PutFeatures(ctx, "spotify", "t1", v); err != nil {
			t.Fatalf("failed to store features: %v", err)
		}

		got, ok, err := repo.GetFeatures(ctx, "spotify", "t1")
		if err != nil || !ok {
			t.Fatalf("expected stored features, got ok=%v err=%v", ok, err)
		}
		if got != v {
			t.Errorf("expected %+v, got %+v", v, got)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		repo := NewFeatureRepository(setupTestDB(t), time.Hour)
		if _, ok, err := repo.GetFeatures(ctx, "spotify", "nope"); ok || err != nil {
			t.Errorf("expected a clean miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		repo := NewFeatureRepository(setupTestDB(t), time.Hour)
		_ = repo.PutFeatures(ctx, "spotify", "t1", *tu.Vector(100, 0.5, 0.5))
		if err := repo.PutFeatures(ctx, "spotify", "t1", *tu.Vector(140, 0.5, 0.5)); err != nil {
			t.Fatalf("expected upsert to succeed, got %v", err)
		}

		got, _, _ := repo.GetFeatures(ctx, "spotify", "t1")
		if got.Tempo != 140 {
			t.Errorf("expected refreshed tempo 140, got %v", got.Tempo)
		}
		if n, _ := repo.Count(ctx); n != 1 {
			t.Errorf("expected 1 row, got %d", n)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		repo := NewFeatureRepository(setupTestDB(t), time.Minute)
		_ = repo.PutFeatures(ctx, "spotify", "t1", *tu.Vector(100, 0.5, 0.5))

		advance(&repo.table, 2*time.Minute)

		if _, ok, _ := repo.GetFeatures(ctx, "spotify", "t1"); ok {
			t.Error("expected expired features to miss")
		}
		if n, _ := repo.Count(ctx); n != 0 {
			t.Errorf("expected no live rows, got %d", n)
		}
		if removed, err := repo.Purge(ctx); err != nil || removed != 1 {
			t.Errorf("expected 1 purged row, got %d (%v)", removed, err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewFeatureRepository(setupTestDB(t), time.Hour)
		if err := repo.PutFeatures(ctx, "", "t1", models.AudioFeatureVector{}); err == nil {
			t.Error("expected error for empty provider")
		}
	})
}

func TestResolutionRepository(t *testing.T) {
	ctx := context.Background()
	seed, _ := models.NewSeedTrack("Bohemian Rhapsody", "Queen")
	match := models.Match{
		Candidate: models.CandidateTrack{ID: "bh", Title: "Bohemian Rhapsody", Artist: "Queen", Provider: "spotify", Year: 1975},
		Score:     0.97,
	}
	track := models.NewResolvedTrack(seed, match, models.MethodExact, 0.7, nil)

	t.Run("Put And Get", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t), time.Hour)
		if err := repo.PutResolution(ctx, track); err != nil {
			t.Fatalf("failed to store resolution: %v", err)
		}

		lookup, _ := models.NewSeedTrack("  bohemian   rhapsody ", "QUEEN")
		got, ok, err := repo.GetResolution(ctx, lookup)
		if err != nil || !ok {
			t.Fatalf("expected cached resolution, got ok=%v err=%v", ok, err)
		}
		if got.ID != "bh" || got.Method != models.MethodExact || got.Confidence != 0.97 {
			t.Errorf("unexpected resolution %+v", got)
		}
		if got.Seed.Track != "bohemian rhapsody" {
			t.Errorf("expected the lookup seed to be attached, got %q", got.Seed.Track)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t), time.Hour)
		_ = repo.PutResolution(ctx, track)

		removed, err := repo.Clear(ctx)
		if err != nil || removed != 1 {
			t.Fatalf("expected 1 cleared row, got %d (%v)", removed, err)
		}
		if _, ok, _ := repo.GetResolution(ctx, seed); ok {
			t.Error("expected cleared resolution to miss")
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t), time.Minute)
		_ = repo.PutResolution(ctx, track)
		advance(&repo.table, time.Hour)

		if _, ok, _ := repo.GetResolution(ctx, seed); ok {
			t.Error("expected expired resolution to miss")
		}
	})

	t.Run("Rejects Empty", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t), time.Hour)
		if err := repo.PutResolution(ctx, nil); err == nil {
			t.Error("expected error for nil track")
		}
	})
}
