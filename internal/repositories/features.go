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

// FeatureRepository persists provider audio features. It satisfies similarity.FeatureStore.
type FeatureRepository struct {
	table
}

// NewFeatureRepository creates a FeatureRepository whose rows live for ttl.
func NewFeatureRepository(db *sql.DB, ttl time.Duration) *FeatureRepository {
	return &FeatureRepository{table: newTable(db, "feature_cache", ttl)}
}

// GetFeatures returns the stored vector for a provider track. Missing and expired rows report false.
func (r *FeatureRepository) GetFeatures(ctx context.Context, provider, trackID string) (models.AudioFeatureVector, bool, error) {
	query := `
		SELECT features, expires_at
		FROM feature_cache
		WHERE provider = ? AND track_id = ?
	`

	var (
		payload string
		expires time.Time
	)
	err := r.db.QueryRowContext(ctx, query, provider, trackID).Scan(&payload, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AudioFeatureVector{}, false, nil
	}
	if err != nil {
		return models.AudioFeatureVector{}, false, fmt.Errorf("failed to get features: %w", err)
	}
	if r.expired(expires) {
		return models.AudioFeatureVector{}, false, nil
	}

	var v models.AudioFeatureVector
	if err := shared.UnmarshalJSON([]byte(payload), &v); err != nil {
		return models.AudioFeatureVector{}, false, fmt.Errorf("failed to decode features: %w", err)
	}
	return v.Clamped(), true, nil
}

// PutFeatures inserts or refreshes the vector for a provider track.
func (r *FeatureRepository) PutFeatures(ctx context.Context, provider, trackID string, v models.AudioFeatureVector) error {
	if provider == "" || trackID == "" {
		return fmt.Errorf("%w: provider and track id are required", shared.ErrInvalidInput)
	}

	payload, err := shared.MarshalJSON(v.Clamped(), false)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}
	created, expires := r.expiry()

	query := `
		INSERT INTO feature_cache (id, provider, track_id, features, estimated, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, track_id) DO UPDATE
		SET features = excluded.features, estimated = excluded.estimated,
			created_at = excluded.created_at, expires_at = excluded.expires_at
	`

	if _, err := r.db.ExecContext(ctx, query, shared.GenerateID(), provider, trackID, string(payload), v.Estimated, created, expires); err != nil {
		return fmt.Errorf("failed to store features: %w", err)
	}
	return nil
}
