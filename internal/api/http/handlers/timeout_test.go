package handlers_test

import (
	"context"
	"net/http"
	"sync"
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
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/revocation"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/testutil"
)

// deadlineUsers records whether store calls arrive with a deadline attached.
type deadlineUsers struct {
	repository.UserRepository
	mu          sync.Mutex
	sawDeadline bool
}

func (r *deadlineUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	_, ok := ctx.Deadline()
	r.mu.Lock()
	r.sawDeadline = ok
	r.mu.Unlock()
	return r.UserRepository.GetByEmail(ctx, email)
}

func TestRequestTimeoutReachesStores(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
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

	users := &deadlineUsers{UserRepository: testutil.NewUserRepo()}
	profiles := testutil.NewProfileRepo()
	ledger := revocation.NewMemoryLedger()
	logger := zap.NewNop()

	authSvc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    users,
		ProfileRepo: profiles,
		Ledger:      ledger,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      logger,
	})
	userSvc := service.NewUserService(users, profiles, nil, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret123!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.User{
		Email:        "deadline@x.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Active:       true,
	}))

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler("account-service", "test", nil, nil),
		Auth:          handlers.NewAuthHandler(authSvc, userSvc, cfg.Cookie),
		Users:         handlers.NewUsersHandler(userSvc),
		Authenticator: auth.NewAuthenticator(authSvc.TokenManager(), users, ledger, cfg.Cookie),
	})
	f := &apiFixture{app: app}

	resp, _ := f.do(t, http.MethodPost, "/login", fiber.Map{
		"email":    "deadline@x.com",
		"password": "Secret123!",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	users.mu.Lock()
	defer users.mu.Unlock()
	assert.True(t, users.sawDeadline, "store calls must inherit the request deadline")
}
