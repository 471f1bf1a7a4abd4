package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// AdminUserHandler serves the user management surface (ADMIN only).
type AdminUserHandler struct {
	Users  *repository.UserRepo
	Roles  *repository.RoleRepo
	Points *service.PointsLedger
}

func NewAdminUserHandler(u *repository.UserRepo, r *repository.RoleRepo, p *service.PointsLedger) *AdminUserHandler {
	return &AdminUserHandler{Users: u, Roles: r, Points: p}
}

// List returns a page of users, optionally filtered by ?search over
// email and name.
func (h *AdminUserHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, total, err := h.Users.List(ctx, strings.TrimSpace(c.QueryParam("search")), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pageEnvelope(users, total, page, limit))
}

// Get returns one user.
func (h *AdminUserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

type updateUserReq struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
	Role  *string `json:"role"`
}

// Update edits email, name or role.  Role names are resolved against
// the roles table so an unknown role is a 404, not a silent FK error.
func (h *AdminUserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var roleID *string
	if req.Role != nil {
		role, err := h.Roles.GetByName(ctx, strings.ToUpper(strings.TrimSpace(*req.Role)))
		if err != nil {
			return fail(c, err)
		}
		roleID = &role.ID
	}

	u, err := h.Users.Update(ctx, c.Param("id"), req.Email, req.Name, roleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete removes a user.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type addPointsReq struct {
	Amount int64 `json:"amount"`
}

// AddPoints credits a manual top-up onto a user's balance.
func (h *AdminUserHandler) AddPoints(c echo.Context) error {
	var req addPointsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Points.Credit(ctx, c.Param("id"), req.Amount); err != nil {
		return fail(c, err)
	}
	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
