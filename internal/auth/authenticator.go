package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/revocation"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

const (
	principalKey = "auth_principal"
	tokenKey     = "auth_token"
)

// Authenticator resolves request credentials into a verified principal.
// Resolution order: Authorization header, refresh token cookie, access token
// cookie. A request with no credentials passes through anonymously; route
// guards decide whether that is acceptable.
type Authenticator struct {
	tokens  *TokenManager
	users   repository.UserRepository
	ledger  revocation.Ledger
	cookies config.CookieConfig
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *TokenManager, users repository.UserRepository, ledger revocation.Ledger, cookies config.CookieConfig) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, ledger: ledger, cookies: cookies}
}

// Handle authenticates the request where credentials are present. The header
// takes precedence over cookies so API clients can override a browser
// session. Header failures are hard 401s; a bad cookie degrades to an
// anonymous request, matching browser-session semantics.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		return a.handleHeader(c, authHeader)
	}

	if refreshCookie := c.Cookies(a.cookies.RefreshName); refreshCookie != "" {
		return a.handleRefreshCookie(c, refreshCookie)
	}

	if accessCookie := c.Cookies(a.cookies.AccessName); accessCookie != "" {
		claims, err := a.tokens.Parse(accessCookie, domain.TokenKindAccess)
		if err != nil {
			return c.Next()
		}
		return a.resolvePrincipal(c, claims)
	}

	// Anonymous request.
	return c.Next()
}

func (a *Authenticator) handleHeader(c *fiber.Ctx, authHeader string) error {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := a.tokens.Parse(parts[1], domain.TokenKindAccess)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return a.resolvePrincipal(c, claims)
}

func (a *Authenticator) handleRefreshCookie(c *fiber.Ctx, refreshCookie string) error {
	claims, err := a.tokens.Parse(refreshCookie, domain.TokenKindRefresh)
	if err != nil {
		return c.Next()
	}

	revoked, err := a.ledger.IsRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if revoked {
		return apperrors.NewUnauthorized("token revoked")
	}
	return a.resolvePrincipal(c, claims)
}

// resolvePrincipal loads the user behind validated claims. The lookup is a
// point-in-time read on every request so role and active changes take effect
// immediately.
func (a *Authenticator) resolvePrincipal(c *fiber.Ctx, claims *Claims) error {
	user, err := a.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized("user is inactive")
	}

	c.Locals(principalKey, user)
	c.Locals(tokenKey, claims.Token())
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.User)
	return principal, ok
}

// TokenFromContext retrieves the validated token behind the principal.
func TokenFromContext(c *fiber.Ctx) (domain.Token, bool) {
	val := c.Locals(tokenKey)
	if val == nil {
		return domain.Token{}, false
	}
	token, ok := val.(domain.Token)
	return token, ok
}

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireCapability enforces a capability on the resolved principal.
// Anonymous requests get 401; an authenticated principal failing the check
// gets 403.
func RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Authorize(principal, capability) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
