// Package repositories implements SQLite persistence for the second cache tier.
//
// Key Implementations:
//   - [FeatureRepository] : audio feature vectors keyed by provider and track ID
//   - [ResolutionRepository] : resolved seeds keyed by normalized "title|artist"
//
// Rows expire after a configurable TTL. Expired rows are ignored on read and removed by Purge.
package repositories
