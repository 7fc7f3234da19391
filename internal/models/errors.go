package models

import "errors"

// Resolution error taxonomy. Provider adapters and the resolver wrap these so callers
// can branch with errors.Is.
var (
	ErrEmptyQuery              = errors.New("empty query")
	ErrInvalidPostalCodeFormat = errors.New("invalid postal code format")
	ErrPostalCodeNotFound      = errors.New("postal code not found")
	ErrNoCoordinateAvailable   = errors.New("no coordinate available")
	ErrProviderUnavailable     = errors.New("provider unavailable")
	ErrNoResults               = errors.New("no results")
	ErrAlreadyResolving        = errors.New("a resolution is already in progress")
)
