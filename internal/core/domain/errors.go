package domain

import "errors"

var (
	// ErrNotFound is returned when a valid lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument wraps caller input that fails validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable covers network failures, non-2xx statuses and
	// malformed bodies from a third-party API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrZeroResults is the places API telling us a query matched nothing.
	ErrZeroResults = errors.New("zero results")
)
