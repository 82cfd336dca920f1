// Package models defines the data model shared by the seed resolution and playlist pipeline.
//
// Types fall into three groups:
//
// 1. Caller-supplied inputs
//   - [SeedTrack] : a loosely specified "track + artist" description, immutable once built
//
// 2. Transient pipeline values, created and discarded within one run
//   - [CandidateTrack] : a catalog entry returned by a provider search
//   - [Match] : a candidate scored against a seed
//   - [ResolvedTrack] : a seed bound to a catalog entry, tagged with the [MatchMethod] that produced it
//   - [AudioFeatureVector] : audio characteristics, clamped to declared bounds at construction
//   - [AudioFeatureProfile] : ranges and preferences derived from resolved seeds
//   - [SimilarityScore] : a candidate scored against a profile with a per-feature breakdown
//
// 3. Outputs owned by the caller
//   - [Resolution] and [ResolutionStats] : per-seed outcomes of a batch resolution
//   - [Playlist] : the selected tracks in presentation order plus generation metadata
package models
