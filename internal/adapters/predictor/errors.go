package predictor

import "errors"

// Sentinel errors for the predictor package.
var (
	// ErrModelUnavailable indicates the requested model is disabled or
	// failed to load. It surfaces as a terminal per-request error, never a
	// process crash.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrEmptyImage indicates a classification request with no image bytes.
	ErrEmptyImage = errors.New("empty image")
)
