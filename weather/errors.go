package weather

import platformerrors "github.com/jmgilman/go/errors"

// ErrMissingCredentials is returned by a fetcher that has no API key configured.
// It is reported before any request is made.
var ErrMissingCredentials = platformerrors.New(platformerrors.CodeInvalidConfig, "weather provider API key is not configured")

// isConfigError reports whether err is a setup problem rather than a provider outage.
func isConfigError(err error) bool {
	return platformerrors.GetCode(err) == platformerrors.CodeInvalidConfig
}
