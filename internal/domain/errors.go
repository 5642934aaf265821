package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidIdentifier is returned for ids that are not made of decimal digits.
	ErrInvalidIdentifier = fmt.Errorf("%w: invalid identifier format", ErrInvalidRequest)
	ErrNotFound          = errors.New("not found")

	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamRejected    = errors.New("upstream rejected request")
	ErrUpstreamMalformed   = errors.New("upstream returned malformed data")

	ErrStore = errors.New("store error")
)
