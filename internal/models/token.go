package models

import (
	"time"
)

// Scope is the permission class a media API credential is requested for.
// Upload and delete credentials may carry different permissions, so they
// are requested and cached independently.
type Scope string

const (
	ScopeUpload Scope = "UPLOAD"
	ScopeDelete Scope = "DELETE"
)

// AccessToken is a scoped bearer credential for the media API.
// Lives in process memory only, must never be written to durable storage.
type AccessToken struct {
	TokenType string
	Token     string
	Scope     Scope

	// Zero when the grant carried no expiry; such tokens are kept for the
	// process lifetime
	ExpiresAt time.Time
}

// Valid reports whether the token can still be presented at the given moment
func (t AccessToken) Valid(now time.Time) bool {
	if t.Token == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}

// Authorization returns the value for the Authorization request header
func (t AccessToken) Authorization() string {
	return t.TokenType + " " + t.Token
}
