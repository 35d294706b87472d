package handlers

import (
	"net/http"
	"strconv"

	"depot/internal/common"
	"depot/internal/models"
	"depot/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles HTTP requests for profile administration.
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// CreateUser handles POST /users. The id must be the identity provider's
// subject for the account.
func (h *UserHandlers) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	id, err := common.ValidateUUID(req.ID, "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	user := &models.User{
		ID:       id,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if err := h.userService.Create(ctx, user); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /users/:id.
func (h *UserHandlers) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	user, err := h.userService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, user)
}

// ChangeRole handles PUT /users/:id/role.
func (h *UserHandlers) ChangeRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.userService.ChangeRole(ctx, id, req.Role); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Role updated"})
}

// DeactivateUser handles DELETE /users/:id.
func (h *UserHandlers) DeactivateUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.userService.Deactivate(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to deactivate user")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers handles GET /users.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	users, err := h.userService.List(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list users")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}
