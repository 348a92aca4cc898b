// Package common contains shared constants and sentinel errors used across
// the todo service components.
package common

const (
	// AuthCookieName is the cookie (and fallback header) carrying the session token.
	AuthCookieName = "x-auth"

	// AuthAccess is the scope marker stored with every session token.
	AuthAccess = "auth"
)
