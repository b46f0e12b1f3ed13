package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// AuthHandler exposes session and self-service account endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	users   *service.UserService
	cookies config.CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, cookies config.CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, users: userService, cookies: cookies}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	setAuthCookies(c, h.cookies, pair)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"user":    dto.NewUserResponse(user),
		"tokens":  dto.TokensResponse{Access: pair.Access.Value, Refresh: pair.Refresh.Value},
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password, clientIP(c))
	if err != nil {
		return err
	}

	profileUser, profile, detailErr := h.users.GetDetail(c.UserContext(), user.ID)
	if detailErr != nil {
		profileUser, profile = user, nil
	}

	setAuthCookies(c, h.cookies, pair)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    dto.NewUserDetailResponse(profileUser, profile),
		"tokens":  dto.TokensResponse{Access: pair.Access.Value, Refresh: pair.Refresh.Value},
	})
}

// Logout handles POST /logout. Always succeeds so clients can clear their
// session even with a broken token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext(), c.Cookies(h.cookies.RefreshName))
	clearAuthCookies(c, h.cookies)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

// Refresh handles POST /token/refresh. The refresh token is read from the
// cookie first, then the request body.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refresh := c.Cookies(h.cookies.RefreshName)
	if refresh == "" {
		var req dto.RefreshRequest
		if len(c.Body()) > 0 {
			_ = c.BodyParser(&req)
		}
		refresh = req.Refresh
	}
	if refresh == "" {
		return apperrors.NewDirectError("No refresh token provided", http.StatusUnauthorized)
	}

	access, err := h.auth.Refresh(c.UserContext(), refresh)
	if err != nil {
		return err
	}

	setAccessCookie(c, h.cookies, access)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Token refreshed",
		"tokens":  dto.TokensResponse{Access: access.Value},
	})
}

// Blacklist handles POST /token/blacklist.
func (h *AuthHandler) Blacklist(c *fiber.Ctx) error {
	var req dto.BlacklistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.Blacklist(c.UserContext(), req.Refresh); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Token blacklisted",
	})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, profile, err := h.users.GetDetail(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    dto.NewUserDetailResponse(user, profile),
	})
}

// ChangePassword handles POST /password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}

// UpdateProfile handles PATCH /profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	update := service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Bio:       req.Bio,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		GitHub:    req.GitHub,
		LinkedIn:  req.LinkedIn,
		Website:   req.Website,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return apperrors.NewValidationError("Request validation failed", map[string]any{"date_of_birth": "Must be a date in 2006-01-02 format"})
		}
		update.DateOfBirth = &dob
	}

	user, profile, err := h.users.UpdateProfile(c.UserContext(), principal.ID, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    dto.NewUserDetailResponse(user, profile),
	})
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
	}
	return c.IP()
}
