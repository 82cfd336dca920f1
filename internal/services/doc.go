// Package services defines the [CatalogSearch] capability for music catalog providers and implements it for
// Spotify, YouTube Music, Last.fm and static JSON catalogs.
//
// # Capability Interface
//
// The resolution and similarity pipelines depend only on [CatalogSearch] (search + audio features) and, optionally,
// [ArtistRelator] (similar artists + top tracks), so every provider can be replaced by a test double.
//
// # Provider Wrapper
//
// [Provider] adds a ranking weight, a request rate limiter ([rate.Limiter]) and a circuit breaker
// ([gobreaker.CircuitBreaker]) to any [CatalogSearch]. After repeated consecutive failures the breaker opens and
// calls fail fast with [shared.ErrProviderUnavailable] until the open timeout passes.
//
// # Pool
//
// [Pool] fans a query out to every provider with bounded concurrency ([errgroup.Group.SetLimit]). Each call gets
// its own timeout derived from a context that ignores the caller's cancellation, so cancelling a batch stops new
// calls without aborting calls already in flight. Results are cached per provider, limit and folded query with
// single-flight semantics.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the OAuth2 client credentials flow and reads /search and /audio-features.
//
// # YouTube Music Implementation
//
// [YouTubeService] communicates with the FastAPI proxy server wrapping ytmusicapi. It has no audio analysis.
//
// # Last.fm Implementation
//
// [LastFMService] treats queries as artist names and returns their top tracks. It also implements [ArtistRelator].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrProviderTimeout] : call ran out of time
//   - [shared.ErrProviderUnavailable] : breaker open, rate limited or 5xx
//   - [shared.ErrFeaturesUnavailable] : provider has no audio analysis for the track
//   - [shared.ErrMissingCredentials] : constructor called without required keys
//   - [shared.ErrAPIRequest] : HTTP request failed
package services
