package models

import "time"

// tokenSkew treats an ID token as expired slightly early so a request
// started just before expiry is not rejected in flight.
const tokenSkew = time.Minute

// Credentials are the identity provider's tokens for a session. Token is
// the ID token, used as the bearer for remote writes; RefreshToken renews
// it once TokenExpiresAt has passed.
type Credentials struct {
	Token          string    `json:"token,omitempty"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	TokenExpiresAt Timestamp `json:"token_expires_at,omitzero"`
}

// TokenValid reports whether Token can still be sent at now. An unknown
// expiry counts as valid.
func (c Credentials) TokenValid(now time.Time) bool {
	if c.Token == "" {
		return false
	}
	return c.TokenExpiresAt.IsZero() || now.Before(c.TokenExpiresAt.Add(-tokenSkew))
}

// Session is the locally cached proof of login.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Credentials
	LoginTimestamp Timestamp `json:"login_timestamp"`
}

// Expired reports whether now is past LoginTimestamp + lifetime.
func (s Session) Expired(now time.Time, lifetime time.Duration) bool {
	return now.After(s.LoginTimestamp.Add(lifetime))
}
