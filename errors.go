package cache

import platformerrors "github.com/jmgilman/go/errors"

// ErrInvalidCapacity is returned when a bounded cache is configured with a capacity below one.
var ErrInvalidCapacity = platformerrors.New(platformerrors.CodeInvalidConfig, "cache capacity must be positive")
