package services

import "errors"

var (
	// ErrNotFound reports an unknown link id. No side effects were taken.
	ErrNotFound = errors.New("link not found")

	// ErrInvalidURL reports a target that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid target url")
)
