package lingua

import (
	"errors"

	"github.com/pitabwire/lingua/culture"
)

var (
	// ErrInvalidArgument reports an empty resource key or base path.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidCulture reports a malformed culture name.
	ErrInvalidCulture = culture.ErrInvalidTag
	// ErrContextNotSet is returned by lookups made before UpdateContext.
	ErrContextNotSet = errors.New("localization context not set")
	// ErrProviderUnavailable wraps any provider failure other than a missing
	// resource, including timeouts and cancellation.
	ErrProviderUnavailable = errors.New("resource provider unavailable")
	// ErrDeserializationFailed wraps decoder failures in GetObject.
	ErrDeserializationFailed = errors.New("resource deserialization failed")
	// ErrClosed is returned by Preload once the engine has been closed.
	ErrClosed = errors.New("localization engine closed")
)
