package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Provider errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrProviderTimeout     = fmt.Errorf("provider timed out")
	ErrProviderUnavailable = fmt.Errorf("provider unavailable")
	ErrFeaturesUnavailable = fmt.Errorf("audio features unavailable")
	ErrTrackNotFound       = fmt.Errorf("track not found")

	// Resolution errors
	ErrUnresolved = fmt.Errorf("seed track unresolved")

	// Persistence errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
