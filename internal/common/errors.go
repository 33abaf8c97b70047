// Package common defines shared constants and sentinel errors used across
// the local store, the remote clients and the services. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Local store errors.
	ErrNotFound          = errors.New("not found")
	ErrStorageUnreadable = errors.New("local storage unreadable")

	// Session lifecycle errors.
	ErrNoSession      = errors.New("no session")
	ErrSessionExpired = errors.New("session expired")
	ErrTokenExpired   = errors.New("remote token expired")

	// Remote sync is switched off because credentials are missing.
	ErrRemoteDisabled = errors.New("remote store not configured")

	// Input rejected before anything was written.
	ErrValidation = errors.New("validation error")
)
