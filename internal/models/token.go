package models

import (
	"strings"
	"time"
)

// Credentials are the Titlovi.com account credentials owned by the store
type Credentials struct {
	Username string `json:"username" toml:"username"`
	Password string `json:"password" toml:"password"`
}

// IsZero reports whether either part of the credentials is missing
func (c Credentials) IsZero() bool {
	return strings.TrimSpace(c.Username) == "" || c.Password == ""
}

// Token is an authenticated catalog session. It is replaced wholesale on refresh.
type Token struct {
	ID             string    `json:"Token" toml:"id"`
	UserID         int       `json:"UserId" toml:"user_id"`
	UserName       string    `json:"UserName" toml:"user_name"`
	ExpirationDate time.Time `json:"ExpirationDate" toml:"expiration_date"`
}

// Valid reports whether the token can still be used at the given instant.
func (t Token) Valid(now time.Time) bool {
	return t.ID != "" && now.Before(t.ExpirationDate)
}
