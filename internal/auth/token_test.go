package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	t.Run("roundtrip preserves subject and kind", func(t *testing.T) {
		for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
			signed, meta, err := tm.Issue("user-123", kind, time.Hour)
			require.NoError(t, err)
			require.NotEmpty(t, signed)
			assert.NotEmpty(t, meta.ID, "token must carry a jti")
			assert.True(t, meta.ExpiresAt.After(meta.IssuedAt), "expiry must be after issuance")

			claims, err := tm.Parse(signed, kind)
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.UserID)
			assert.Equal(t, kind, claims.Kind)
			assert.Equal(t, meta.ID, claims.ID)
		}
	})

	t.Run("fresh jti per token", func(t *testing.T) {
		_, first, err := tm.Issue("user-123", domain.TokenKindAccess, time.Hour)
		require.NoError(t, err)
		_, second, err := tm.Issue("user-123", domain.TokenKindAccess, time.Hour)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("expired token fails with ErrTokenExpired", func(t *testing.T) {
		signed, _, err := tm.Issue("user-123", domain.TokenKindAccess, -time.Minute)
		require.NoError(t, err)

		_, err = tm.Parse(signed, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("tampered token fails with ErrTokenMalformed", func(t *testing.T) {
		signed, _, err := tm.Issue("user-123", domain.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		tampered := signed[:len(signed)-2] + "xx"
		_, err = tm.Parse(tampered, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		other := NewTokenManager("other-secret", 15*time.Minute, 24*time.Hour)
		signed, _, err := other.Issue("user-123", domain.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		_, err = tm.Parse(signed, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("kind mismatch fails", func(t *testing.T) {
		signed, _, err := tm.Issue("user-123", domain.TokenKindRefresh, time.Hour)
		require.NoError(t, err)

		_, err = tm.Parse(signed, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("unexpected signing method fails", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID: "user-123",
			Kind:   domain.TokenKindAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.Parse(unsigned, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := tm.Parse("not.a.token", domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})
}

func TestTokenManager_IssuePair(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	pair, refreshMeta, err := tm.IssuePair("user-123")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.Access.Value)
	assert.NotEmpty(t, pair.Refresh.Value)
	assert.NotEqual(t, pair.Access.Value, pair.Refresh.Value)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.Access.ExpiresAt, time.Second)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.Refresh.ExpiresAt, time.Second)

	refreshClaims, err := tm.Parse(pair.Refresh.Value, domain.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, refreshMeta.ID, refreshClaims.ID)

	// The access token must not validate as a refresh token.
	_, err = tm.Parse(pair.Access.Value, domain.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewTokenManager_Defaults(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 0, 0)
	assert.Equal(t, 15*time.Minute, tm.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, tm.RefreshTTL())
}
