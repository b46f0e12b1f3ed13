package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// UsersHandler exposes the admin/manager user directory.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /users with optional role and is_verified filters.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var filter repository.UserFilter

	if roleParam := c.Query("role"); roleParam != "" {
		role := domain.UserRole(roleParam)
		if !domain.ValidRole(role) {
			return apperrors.NewValidationError("Invalid role filter", map[string]any{"role": "must be one of admin, manager, user"})
		}
		filter.Role = &role
	}
	if verifiedParam := c.Query("is_verified"); verifiedParam != "" {
		verified := strings.EqualFold(verifiedParam, "true")
		filter.Verified = &verified
	}

	users, err := h.users.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   responses,
	})
}

// userIDParam validates the :id path value so malformed ids never reach the
// store as queries.
func userIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound("User")
	}
	return id, nil
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	user, profile, err := h.users.GetDetail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    dto.NewUserDetailResponse(user, profile),
	})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	var req dto.AdminUpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	update := service.AdminUpdate{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Active:    req.IsActive,
	}
	if req.Role != nil {
		role := domain.UserRole(*req.Role)
		update.Role = &role
	}

	user, err := h.users.Update(c.UserContext(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	principal, _ := auth.PrincipalFromContext(c)
	actorID := ""
	if principal != nil {
		actorID = principal.ID
	}

	if err := h.users.Delete(c.UserContext(), id, actorID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateRole handles POST /users/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.RoleUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	oldRole, user, err := h.users.UpdateRole(c.UserContext(), principal.ID, req.UserID, domain.UserRole(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Role updated from %s to %s", oldRole, user.Role),
		"user":    dto.NewUserResponse(user),
	})
}
