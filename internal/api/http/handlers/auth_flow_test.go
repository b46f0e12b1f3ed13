package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/revocation"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/testutil"
)

type apiFixture struct {
	app     *fiber.App
	users   *testutil.UserRepo
	ledger  *revocation.MemoryLedger
	tokens  *auth.TokenManager
	authSvc *service.AuthService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{Name: "account-service", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:              "test-secret",
			AccessTokenTTLMinutes:  15,
			RefreshTokenTTLMinutes: 24 * 60,
			BcryptCost:             bcrypt.MinCost,
		},
		Cookie: config.CookieConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			SameSite:    "Lax",
		},
	}

	users := testutil.NewUserRepo()
	profiles := testutil.NewProfileRepo()
	ledger := revocation.NewMemoryLedger()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	authSvc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    users,
		ProfileRepo: profiles,
		Ledger:      ledger,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	userSvc := service.NewUserService(users, profiles, dispatcher, logger)
	auditSvc := service.NewAuditService(dispatcher, logger, cfg.Audit)
	auditSvc.RegisterHandlers()

	authenticator := auth.NewAuthenticator(authSvc.TokenManager(), users, ledger, cfg.Cookie)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil),
		Auth:          handlers.NewAuthHandler(authSvc, userSvc, cfg.Cookie),
		Users:         handlers.NewUsersHandler(userSvc),
		Authenticator: authenticator,
	})

	return &apiFixture{
		app:     app,
		users:   users,
		ledger:  ledger,
		tokens:  authSvc.TokenManager(),
		authSvc: authSvc,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, configure func(*http.Request)) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if configure != nil {
		configure(req)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// createUser seeds an account directly in the store.
func (f *apiFixture) createUser(t *testing.T, email, password string, role domain.UserRole) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *apiFixture) bearer(t *testing.T, userID string) string {
	t.Helper()
	access, _, err := f.tokens.Issue(userID, domain.TokenKindAccess, time.Hour)
	require.NoError(t, err)
	return "Bearer " + access
}

func cookieValue(resp *http.Response, name string) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func TestRegister(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	t.Run("creates account and issues tokens", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/register", fiber.Map{
			"email":            "a@x.com",
			"password":         "Secret123!",
			"password_confirm": "Secret123!",
			"first_name":       "Ada",
		}, nil)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, true, body["success"])

		tokens := body["tokens"].(map[string]any)
		assert.NotEmpty(t, tokens["access"])
		assert.NotEmpty(t, tokens["refresh"])

		user := body["user"].(map[string]any)
		assert.Equal(t, "a@x.com", user["email"])
		assert.Equal(t, "user", user["role"])

		access := cookieValue(resp, "access_token")
		refresh := cookieValue(resp, "refresh_token")
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)

		for _, cookie := range resp.Cookies() {
			assert.True(t, cookie.HttpOnly, "cookie %s must be HttpOnly", cookie.Name)
			assert.Equal(t, "/", cookie.Path)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/register", fiber.Map{
			"email":            "a@x.com",
			"password":         "Secret123!",
			"password_confirm": "Secret123!",
		}, nil)

		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Conflict", body["error"])
	})

	t.Run("mismatched confirmation fails validation", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/register", fiber.Map{
			"email":            "b@x.com",
			"password":         "Secret123!",
			"password_confirm": "different",
		}, nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Bad Request", body["error"])
		detail := body["detail"].(map[string]any)
		assert.Contains(t, detail, "password_confirm")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.createUser(t, "login@x.com", "Secret123!", domain.RoleUser)

	t.Run("correct credentials succeed", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/login", fiber.Map{
			"email":    "login@x.com",
			"password": "Secret123!",
		}, nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		tokens := body["tokens"].(map[string]any)
		assert.NotEmpty(t, tokens["access"])
		assert.NotEmpty(t, tokens["refresh"])
		assert.NotEmpty(t, cookieValue(resp, "refresh_token"))
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/login", fiber.Map{
			"email":    "login@x.com",
			"password": "WrongPass1!",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid credentials", body["error"])
		assert.NotContains(t, body, "detail")
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/login", fiber.Map{
			"email":    "nobody@x.com",
			"password": "Secret123!",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", body["error"])
	})

	t.Run("disabled account is rejected", func(t *testing.T) {
		disabled := f.createUser(t, "disabled@x.com", "Secret123!", domain.RoleUser)
		disabled.Active = false
		require.NoError(t, f.users.Update(context.Background(), disabled))

		resp, body := f.do(t, http.MethodPost, "/login", fiber.Map{
			"email":    "disabled@x.com",
			"password": "Secret123!",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "User account is disabled", body["error"])
	})
}

func TestLogoutAndRefresh(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	user := f.createUser(t, "session@x.com", "Secret123!", domain.RoleUser)

	login := func(t *testing.T) string {
		resp, _ := f.do(t, http.MethodPost, "/login", fiber.Map{
			"email":    "session@x.com",
			"password": "Secret123!",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		refresh := cookieValue(resp, "refresh_token")
		require.NotEmpty(t, refresh)
		return refresh
	}

	t.Run("refresh issues a new access token", func(t *testing.T) {
		refresh := login(t)

		resp, body := f.do(t, http.MethodPost, "/token/refresh", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		tokens := body["tokens"].(map[string]any)
		assert.NotEmpty(t, tokens["access"])
		assert.Empty(t, tokens["refresh"], "refresh token is reused, not rotated")
		assert.NotEmpty(t, cookieValue(resp, "access_token"))
	})

	t.Run("refresh accepts the token in the body", func(t *testing.T) {
		refresh := login(t)

		resp, body := f.do(t, http.MethodPost, "/token/refresh", fiber.Map{"refresh": refresh}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
	})

	t.Run("refresh without a token is unauthorized", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/token/refresh", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "No refresh token provided", body["error"])
		assert.NotContains(t, body, "detail")
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		refresh := login(t)

		claims, err := f.tokens.Parse(refresh, domain.TokenKindRefresh)
		require.NoError(t, err)

		resp, body := f.do(t, http.MethodPost, "/logout", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Logout successful", body["message"])

		revoked, err := f.ledger.IsRevoked(context.Background(), claims.ID)
		require.NoError(t, err)
		assert.True(t, revoked)

		// Cookies are cleared.
		for _, cookie := range resp.Cookies() {
			assert.Empty(t, cookie.Value, "cookie %s should be cleared", cookie.Name)
		}

		// The revoked token can no longer refresh.
		resp, body = f.do(t, http.MethodPost, "/token/refresh", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", body["error"])
	})

	t.Run("logout with a bearer and no cookie still succeeds", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/logout", nil, func(r *http.Request) {
			r.Header.Set("Authorization", f.bearer(t, user.ID))
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
	})

	t.Run("blacklist revokes a body-supplied token", func(t *testing.T) {
		refresh := login(t)
		claims, err := f.tokens.Parse(refresh, domain.TokenKindRefresh)
		require.NoError(t, err)

		resp, _ := f.do(t, http.MethodPost, "/token/blacklist", fiber.Map{"refresh": refresh}, func(r *http.Request) {
			r.Header.Set("Authorization", f.bearer(t, user.ID))
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		revoked, err := f.ledger.IsRevoked(context.Background(), claims.ID)
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}

func TestMeAndPassword(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	t.Run("me returns the current account", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/register", fiber.Map{
			"email":            "me@x.com",
			"password":         "Secret123!",
			"password_confirm": "Secret123!",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		tokens := body["tokens"].(map[string]any)

		resp, body = f.do(t, http.MethodGet, "/me", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+tokens["access"].(string))
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		user := body["user"].(map[string]any)
		assert.Equal(t, "me@x.com", user["email"])
		assert.Contains(t, user, "profile", "registration creates an empty profile")
	})

	t.Run("me requires authentication", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodGet, "/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("password change verifies the old password", func(t *testing.T) {
		user := f.createUser(t, "pw@x.com", "OldSecret1!", domain.RoleUser)

		resp, body := f.do(t, http.MethodPost, "/password", fiber.Map{
			"old_password":         "wrong",
			"new_password":         "NewSecret1!",
			"new_password_confirm": "NewSecret1!",
		}, func(r *http.Request) {
			r.Header.Set("Authorization", f.bearer(t, user.ID))
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Incorrect old password", body["error"])

		resp, _ = f.do(t, http.MethodPost, "/password", fiber.Map{
			"old_password":         "OldSecret1!",
			"new_password":         "NewSecret1!",
			"new_password_confirm": "NewSecret1!",
		}, func(r *http.Request) {
			r.Header.Set("Authorization", f.bearer(t, user.ID))
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// New password works, old one does not.
		resp, _ = f.do(t, http.MethodPost, "/login", fiber.Map{"email": "pw@x.com", "password": "NewSecret1!"}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = f.do(t, http.MethodPost, "/login", fiber.Map{"email": "pw@x.com", "password": "OldSecret1!"}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("profile patch updates names and profile fields", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/register", fiber.Map{
			"email":            "profile@x.com",
			"password":         "Secret123!",
			"password_confirm": "Secret123!",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		access := body["tokens"].(map[string]any)["access"].(string)

		resp, body = f.do(t, http.MethodPatch, "/profile", fiber.Map{
			"first_name": "Grace",
			"city":       "London",
			"website":    "https://example.com",
		}, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+access)
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		user := body["user"].(map[string]any)
		assert.Equal(t, "Grace", user["first_name"])
		profile := user["profile"].(map[string]any)
		assert.Equal(t, "London", profile["city"])
	})
}
