package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// UserService covers profile management and the admin/manager directory.
type UserService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, profiles repository.ProfileRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, profiles: profiles, dispatcher: dispatcher, logger: logger}
}

// GetDetail returns a user together with their profile. A missing profile is
// tolerated and returned as nil.
func (s *UserService) GetDetail(ctx context.Context, id string) (*domain.User, *domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("User")
		}
		return nil, nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, id)
	if err != nil && err != pgx.ErrNoRows {
		return nil, nil, err
	}
	return user, profile, nil
}

// ProfileUpdate carries optional profile changes; nil fields are untouched.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Bio         *string
	DateOfBirth *time.Time
	Address     *string
	City        *string
	Country     *string
	GitHub      *string
	LinkedIn    *string
	Website     *string
}

// UpdateProfile applies a partial update to the user's names and profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, *domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err == pgx.ErrNoRows {
		profile = &domain.UserProfile{UserID: userID}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&profile.Phone, update.Phone)
	applyString(&profile.Bio, update.Bio)
	applyString(&profile.Address, update.Address)
	applyString(&profile.City, update.City)
	applyString(&profile.Country, update.Country)
	applyString(&profile.GitHub, update.GitHub)
	applyString(&profile.LinkedIn, update.LinkedIn)
	applyString(&profile.Website, update.Website)
	if update.DateOfBirth != nil {
		profile.DateOfBirth = update.DateOfBirth
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// List returns users matching the filter, newest first.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return s.users.List(ctx, filter)
}

// AdminUpdate carries optional admin-editable account fields.
type AdminUpdate struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	Role      *domain.UserRole
	Active    *bool
}

// Update applies a partial admin update to a user record.
func (s *UserService) Update(ctx context.Context, id string, update AdminUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}

	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Role != nil {
		if !domain.ValidRole(*update.Role) {
			return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": "must be one of admin, manager, user"})
		}
		user.Role = *update.Role
	}
	if update.Active != nil {
		user.Active = *update.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("User")
		}
		return err
	}
	s.publish(ctx, events.EventUserDeleted, id, actorID, nil)
	return nil
}

// UpdateRole changes a user's role and reports the previous one.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID string, role domain.UserRole) (domain.UserRole, *domain.User, error) {
	if !domain.ValidRole(role) {
		return "", nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": "must be one of admin, manager, user"})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil, apperrors.NewDirectError("User not found", http.StatusNotFound)
		}
		return "", nil, err
	}

	oldRole := user.Role
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return "", nil, err
	}

	s.logger.Info("user role changed",
		zap.String("user", user.Email),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(role)),
		zap.String("actor_id", actorID),
	)
	s.publish(ctx, events.EventRoleChanged, user.ID, actorID, events.RoleChangedPayload{OldRole: oldRole, NewRole: role})
	return oldRole, user, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID, actorID string, payload any) {
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
