package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/revocation"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// AuthService coordinates registration, login, logout and token flows.
type AuthService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	tokenMgr   *auth.TokenManager
	ledger     revocation.Ledger
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	ProfileRepo repository.ProfileRepository
	Ledger      revocation.Ledger
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		profiles:   deps.ProfileRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL()),
		ledger:     deps.Ledger,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new account with an empty profile and issues the first
// token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, domain.TokenPair, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	user := &domain.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.TokenPair{}, apperrors.NewConflict("A user with that email already exists", nil)
		}
		return nil, domain.TokenPair{}, err
	}

	if err := s.profiles.Create(ctx, &domain.UserProfile{UserID: user.ID}); err != nil {
		return nil, domain.TokenPair{}, err
	}

	pair, _, err := s.tokenMgr.IssuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, "", events.UserRegisteredPayload{Email: user.Email, Role: user.Role})
	return user, pair, nil
}

// Login authenticates the credentials and issues a token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.TokenPair{}, apperrors.NewDirectError("Invalid credentials", http.StatusUnauthorized)
		}
		return nil, domain.TokenPair{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.TokenPair{}, apperrors.NewDirectError("Invalid credentials", http.StatusUnauthorized)
	}
	if !user.Active {
		return nil, domain.TokenPair{}, apperrors.NewDirectError("User account is disabled", http.StatusUnauthorized)
	}

	if ip != "" {
		user.LastLoginIP = &ip
		if err := s.users.Update(ctx, user); err != nil {
			return nil, domain.TokenPair{}, err
		}
	}

	pair, _, err := s.tokenMgr.IssuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.logger.Info("user logged in", zap.String("email", user.Email), zap.String("ip", ip))
	s.publish(ctx, events.EventUserLoggedIn, user.ID, user.ID, events.UserLoggedInPayload{Email: user.Email, IP: ip})
	return user, pair, nil
}

// Logout revokes the refresh token's jti. It never fails observably: a bad or
// missing token is swallowed so a client can always clear its session.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.tokenMgr.Parse(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		s.logger.Debug("logout with unverifiable refresh token", zap.Error(err))
		return
	}
	if err := s.revoke(ctx, claims); err != nil {
		s.logger.Error("failed to revoke refresh token", zap.Error(err))
	}
}

// Refresh validates the refresh token against signature, expiry and the
// revocation ledger, then issues a new access token. The refresh token is
// reused, not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.IssuedToken, error) {
	claims, err := s.tokenMgr.Parse(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return domain.IssuedToken{}, apperrors.NewUnauthorized("Token is invalid or expired")
	}

	revoked, err := s.ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	if revoked {
		return domain.IssuedToken{}, apperrors.NewUnauthorized("Token is blacklisted")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.IssuedToken{}, apperrors.NewUnauthorized("User not found")
		}
		return domain.IssuedToken{}, err
	}
	if !user.Active {
		return domain.IssuedToken{}, apperrors.NewUnauthorized("User account is disabled")
	}

	return s.tokenMgr.IssueAccess(user.ID)
}

// Blacklist explicitly revokes a refresh token supplied by the client.
func (s *AuthService) Blacklist(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenMgr.Parse(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return apperrors.NewUnauthorized("Token is invalid or expired")
	}
	return s.revoke(ctx, claims)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewDirectError("Incorrect old password", http.StatusBadRequest)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user changed password", zap.String("email", user.Email))
	s.publish(ctx, events.EventPasswordChanged, user.ID, user.ID, nil)
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) error {
	// Retention covers the token's whole lifetime so the entry outlives it.
	if err := s.ledger.Revoke(ctx, claims.ID, s.tokenMgr.RefreshTTL()); err != nil {
		return err
	}
	s.publish(ctx, events.EventTokenRevoked, claims.UserID, claims.UserID, events.TokenRevokedPayload{JTI: claims.ID})
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
