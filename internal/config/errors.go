package config

import "errors"

var (
	// ErrConfigNotFound is returned by Load when the file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidLanguage is returned for a language that is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrUnknownTheme is returned for a theme name that does not exist.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrInvalidTextSize is returned when the text size step is out of range.
	ErrInvalidTextSize = errors.New("invalid text size: must be between -3 and 3")

	// ErrInvalidCacheCapacity is returned when the page cache has no room.
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity: must be positive")

	// ErrInvalidPrefetch is returned for a negative prefetch count.
	ErrInvalidPrefetch = errors.New("invalid prefetch links: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidScheme is returned for an API scheme other than http or https.
	ErrInvalidScheme = errors.New("invalid api scheme")
)
