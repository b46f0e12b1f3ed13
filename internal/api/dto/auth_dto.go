package dto

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"omitempty,max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"omitempty,max=150"`
	LastName        string `json:"last_name" validate:"omitempty,max=150"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest optionally carries the refresh token in the body; the
// cookie takes precedence.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// BlacklistRequest explicitly revokes a refresh token.
type BlacklistRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// ChangePasswordRequest payload for password change.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// TokensResponse carries the issued token pair in the response body.
type TokensResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
