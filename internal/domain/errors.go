package domain

import "errors"

var (
	// ErrSourceNotConfigured means the metadata source has no credential.
	ErrSourceNotConfigured = errors.New("metadata source not configured")
	ErrVideoNotFound       = errors.New("video not found")
	ErrSermonNotFound      = errors.New("sermon not found")
)
