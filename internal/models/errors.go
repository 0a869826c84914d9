package models

import "errors"

// Engine error kinds. All are terminal for the request that raised them
// except ErrUpstreamUnavailable, which callers recover from by degrading to a
// schedule-only estimate.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidSegment      = errors.New("invalid segment")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
