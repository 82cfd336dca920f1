package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/seedmix/internal/models"
	"github.com/desertthunder/seedmix/internal/shared"
)

// ResolutionRepository persists resolved seeds so repeated runs skip provider calls.
type ResolutionRepository struct {
	table
}

// NewResolutionRepository creates a ResolutionRepository whose rows live for ttl.
func NewResolutionRepository(db *sql.DB, ttl time.Duration) *ResolutionRepository {
	return &ResolutionRepository{table: newTable(db, "resolution_cache", ttl)}
}

// GetResolution returns the cached resolution of seed. Missing and expired rows report false.
//
// The stored track is rebound to seed so per-seed overrides of the caller apply.
func (r *ResolutionRepository) GetResolution(ctx context.Context, seed models.SeedTrack) (*models.ResolvedTrack, bool, error) {
	query := `
		SELECT payload, expires_at
		FROM resolution_cache
		WHERE seed_key = ?
	`

	var (
		payload string
		expires time.Time
	)
	err := r.db.QueryRowContext(ctx, query, seed.Key()).Scan(&payload, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get resolution: %w", err)
	}
	if r.expired(expires) {
		return nil, false, nil
	}

	var track models.ResolvedTrack
	if err := shared.UnmarshalJSON([]byte(payload), &track); err != nil {
		return nil, false, fmt.Errorf("failed to decode resolution: %w", err)
	}
	track.Seed = seed
	return &track, true, nil
}

// PutResolution stores track under its seed's key, replacing any earlier entry.
func (r *ResolutionRepository) PutResolution(ctx context.Context, track *models.ResolvedTrack) error {
	if track == nil || track.ID == "" {
		return fmt.Errorf("%w: resolved track is required", shared.ErrInvalidInput)
	}

	payload, err := shared.MarshalJSON(track, false)
	if err != nil {
		return fmt.Errorf("failed to encode resolution: %w", err)
	}
	created, expires := r.expiry()

	query := `
		INSERT INTO resolution_cache (id, seed_key, provider, track_id, confidence, method, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (seed_key) DO UPDATE
		SET provider = excluded.provider, track_id = excluded.track_id, confidence = excluded.confidence,
			method = excluded.method, payload = excluded.payload,
			created_at = excluded.created_at, expires_at = excluded.expires_at
	`

	_, err = r.db.ExecContext(ctx, query,
		shared.GenerateID(),
		track.Seed.Key(),
		track.Provider,
		track.ID,
		track.Confidence,
		track.Method.String(),
		string(payload),
		created,
		expires,
	)
	if err != nil {
		return fmt.Errorf("failed to store resolution: %w", err)
	}
	return nil
}
