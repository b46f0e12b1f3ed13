package domain

import "time"

// TokenKind differentiates access vs refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Token represents issued bearer token metadata.
type Token struct {
	ID        string
	UserID    string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken pairs a signed token string with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair bundles the access and refresh tokens minted at login.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
