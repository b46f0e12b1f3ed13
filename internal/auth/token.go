package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/domain"
)

// Token verification failures. Both map to 401 at the HTTP boundary; the
// distinction is never exposed to clients.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenManager issues and validates signed JWT tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID string           `json:"user_id"`
	Kind   domain.TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// Token returns the decoded token metadata for the claims.
func (c *Claims) Token() domain.Token {
	token := domain.Token{
		ID:     c.ID,
		UserID: c.UserID,
		Kind:   c.Kind,
	}
	if c.IssuedAt != nil {
		token.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		token.ExpiresAt = c.ExpiresAt.Time
	}
	return token
}

// Issue builds and signs a token of the given kind with a fresh jti.
func (tm *TokenManager) Issue(userID string, kind domain.TokenKind, ttl time.Duration) (string, domain.Token, error) {
	now := time.Now()
	token := domain.Token{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	claims := &Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token.ID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(token.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", domain.Token{}, err
	}
	return signed, token, nil
}

// IssuePair mints an access and refresh token for the user using the
// configured lifetimes.
func (tm *TokenManager) IssuePair(userID string) (domain.TokenPair, domain.Token, error) {
	access, _, err := tm.Issue(userID, domain.TokenKindAccess, tm.accessTTL)
	if err != nil {
		return domain.TokenPair{}, domain.Token{}, err
	}
	refresh, refreshMeta, err := tm.Issue(userID, domain.TokenKindRefresh, tm.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, domain.Token{}, err
	}

	pair := domain.TokenPair{
		Access:  domain.IssuedToken{Value: access, ExpiresAt: time.Now().Add(tm.accessTTL)},
		Refresh: domain.IssuedToken{Value: refresh, ExpiresAt: refreshMeta.ExpiresAt},
	}
	return pair, refreshMeta, nil
}

// IssueAccess mints a single access token using the configured lifetime.
func (tm *TokenManager) IssueAccess(userID string) (domain.IssuedToken, error) {
	signed, meta, err := tm.Issue(userID, domain.TokenKindAccess, tm.accessTTL)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return domain.IssuedToken{Value: signed, ExpiresAt: meta.ExpiresAt}, nil
}

// AccessTTL exposes the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration {
	return tm.accessTTL
}

// RefreshTTL exposes the configured refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// Parse validates signature, structure and expiry, and requires the token to
// be of the expected kind. Expiry surfaces as ErrTokenExpired, everything
// else as ErrTokenMalformed.
func (tm *TokenManager) Parse(tokenStr string, kind domain.TokenKind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Kind != kind || claims.UserID == "" || claims.ID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
