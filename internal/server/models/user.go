package models

import "time"

// DefaultDescription is the placeholder profile text of a new user.
const DefaultDescription = "No description yet"

// User is a registered account. PasswordHash only ever holds a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Description  string
	Friends      []Friend
	CreatedAt    time.Time
}

// SessionToken is one currently valid session of a user.
type SessionToken struct {
	Access    string
	Token     string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Friend references another user by email.
type Friend struct {
	Email     string
	CreatedAt time.Time
}
