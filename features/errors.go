package features

import platformerrors "github.com/jmgilman/go/errors"

var (
	// ErrExtractionFailed is returned once every attempt against the provider has failed.
	// Match it with errors.Is; the last provider error is wrapped alongside it.
	ErrExtractionFailed = platformerrors.New(platformerrors.CodeExecutionFailed, "feature extraction failed")

	// ErrInvalidRetries is returned when a cache is configured with fewer than one attempt.
	ErrInvalidRetries = platformerrors.New(platformerrors.CodeInvalidConfig, "feature extraction retries must be at least 1")
)
