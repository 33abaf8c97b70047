// Package common contains shared constants and sentinel errors used across
// smartpool components.
package common

import "time"

// GuestUserID owns records created while nobody is signed in.
const GuestUserID = "guest"

// SessionLifetime is how long a saved session stays valid after login.
// It is measured from the login timestamp and is not extended on use.
const SessionLifetime = 30 * 24 * time.Hour

// AuthorizationHeaderName carries the bearer token on outbound REST calls.
const AuthorizationHeaderName = "Authorization"
