package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
)

// UserHandler exposes the account-management surface: lock administration,
// password change, lookup, paging, search, and profile updates.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type lockRequest struct {
	// Enabled mirrors the stored flag: false locks the account.
	Enabled *bool `json:"enabled" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=5"`
}

type updateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type listUsersResponse struct {
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Users    []domain.User `json:"users"`
}

// List handles GET /v1/users?page=&page_size= (admin only, enforced by RBAC).
//
// @Summary      List users (paged)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "1-based page number"
// @Param        page_size  query     int  false  "page size (max 100)"
// @Success      200        {object}  listUsersResponse
// @Failure      403        {object}  map[string]string
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	users, err := h.users.ListUsers(c.Request().Context(), page, pageSize)
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	if page < 1 {
		page = 1
	}

	return c.JSON(http.StatusOK, listUsersResponse{Page: page, PageSize: len(users), Users: users})
}

// Search handles GET /v1/users/search?q= (admin only).
//
// @Summary      Search users by username, email, or full name
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "substring to match"
// @Success      200  {array}   domain.User
// @Failure      422  {object}  map[string]string
// @Router       /v1/users/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	users, err := h.users.SearchUsers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /v1/users/:id (admin only).
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "user id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Me handles GET /v1/users/me — the caller's own record.
//
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /v1/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, _, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Lock handles PUT /v1/users/:id/lock (admin only).
//
// @Summary      Set the account lock flag
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string       true  "user id"
// @Param        body  body  lockRequest  true  "enabled=false locks the account"
// @Success      204   "no content"
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id}/lock [put]
func (h *UserHandler) Lock(c echo.Context) error {
	var req lockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.LockUser(c.Request().Context(), c.Param("id"), *req.Enabled); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword handles PUT /v1/users/me/password.
//
// @Summary      Change the authenticated user's password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "current and new password"
// @Success      204   "no content"
// @Failure      401   {object}  map[string]string
// @Router       /v1/users/me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, _, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Update handles PUT /v1/users/:id. Admins may update anyone; everyone else
// only their own record.
//
// @Summary      Update a user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "user id"
// @Param        body  body      updateUserRequest  true  "fields to update"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	userID, _, roles, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id != userID && !hasRole(roles, domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.UpdateUser(c.Request().Context(), id, ports.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
