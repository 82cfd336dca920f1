// Package tasks runs the seed-to-playlist pipeline with real-time progress reporting.
//
// # Core Operations
//
// [PlaylistEngine] exposes two operations:
//
//  1. [PlaylistEngine.ResolveSeeds] : binds seeds to catalog entries
//     - Checks the optional [ResolutionStore] before any provider call
//     - Resolves seeds concurrently on a bounded worker pool
//     - Returns one [models.Resolution] per seed in input order, plus summary stats
//
//  2. [PlaylistEngine.GeneratePlaylist] : builds a playlist from resolved seeds
//     - Looks up seed features and derives the target profile
//     - Searches for similar candidates across providers
//     - Filters and greedily selects a diverse playlist
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends never block: an update
// is dropped when the channel is full.
//
// # Failure Semantics
//
// A seed that cannot be resolved is reported in its [models.Resolution] and never fails the batch.
// Configuration errors are returned before any provider call. A generation whose providers all
// failed returns a (possibly empty) playlist flagged Degraded.
package tasks
