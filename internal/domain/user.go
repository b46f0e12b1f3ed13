package domain

import "time"

// UserRole enumerates access-control roles.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// ValidRole reports whether the given role is one of the enumerated values.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// User is the domain model for account principals.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         UserRole
	Active       bool
	Verified     bool
	LastLoginIP  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name with a space.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role UserRole) bool {
	return u.Role == role
}

// HasAnyRole reports whether the user holds any of the given roles.
func (u *User) HasAnyRole(roles ...UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}
