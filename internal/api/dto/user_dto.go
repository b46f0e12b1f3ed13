package dto

import (
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	LastLoginIP *string   `json:"last_login_ip,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileResponse is the public representation of a user profile.
type ProfileResponse struct {
	Phone       string     `json:"phone"`
	Bio         string     `json:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	GitHub      string     `json:"github"`
	LinkedIn    string     `json:"linkedin"`
	Website     string     `json:"website"`
}

// UserDetailResponse embeds the profile alongside the account fields.
type UserDetailResponse struct {
	UserResponse
	Profile *ProfileResponse `json:"profile,omitempty"`
}

// NewUserResponse maps a domain user to its response shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		IsActive:    user.Active,
		IsVerified:  user.Verified,
		LastLoginIP: user.LastLoginIP,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// NewUserDetailResponse maps a user plus optional profile.
func NewUserDetailResponse(user *domain.User, profile *domain.UserProfile) UserDetailResponse {
	detail := UserDetailResponse{UserResponse: NewUserResponse(user)}
	if profile != nil {
		detail.Profile = &ProfileResponse{
			Phone:       profile.Phone,
			Bio:         profile.Bio,
			DateOfBirth: profile.DateOfBirth,
			Address:     profile.Address,
			City:        profile.City,
			Country:     profile.Country,
			GitHub:      profile.GitHub,
			LinkedIn:    profile.LinkedIn,
			Website:     profile.Website,
		}
	}
	return detail
}

// UpdateProfileRequest partially updates names and profile fields.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Bio         *string `json:"bio"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	Country     *string `json:"country" validate:"omitempty,max=100"`
	GitHub      *string `json:"github" validate:"omitempty,max=100"`
	LinkedIn    *string `json:"linkedin" validate:"omitempty,max=100"`
	Website     *string `json:"website" validate:"omitempty,url"`
}

// AdminUpdateUserRequest partially updates admin-editable account fields.
type AdminUpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Username  *string `json:"username" validate:"omitempty,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin manager user"`
	IsActive  *bool   `json:"is_active"`
}

// RoleUpdateRequest changes a user's role.
type RoleUpdateRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=admin manager user"`
}
