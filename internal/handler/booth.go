package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
)

// BoothHandler serves the kiosk registry: public availability reads
// plus the admin CRUD surface.
type BoothHandler struct {
	Booths   *repository.PhotoboothRepo
	Sessions *repository.SessionRepo
}

func NewBoothHandler(b *repository.PhotoboothRepo, s *repository.SessionRepo) *BoothHandler {
	return &BoothHandler{Booths: b, Sessions: s}
}

// ListAvailable returns active booths open for reservation.
func (h *BoothHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booths, err := h.Booths.ListAvailable(ctx)
	if err != nil {
		return fail(c, err)
	}
	if booths == nil {
		booths = []model.Photobooth{}
	}
	return c.JSON(http.StatusOK, booths)
}

// List returns a page of all booths.
func (h *BoothHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booths, total, err := h.Booths.List(ctx, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pageEnvelope(booths, total, page, limit))
}

// Get returns one booth by id.
func (h *BoothHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Booths.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Status reports aggregate booth and session counts.
func (h *BoothHandler) Status(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booths, err := h.Booths.StatusCounts(ctx)
	if err != nil {
		return fail(c, err)
	}
	sessions, err := h.Sessions.StatusCounts(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"photobooths": booths,
		"sessions":    sessions,
	})
}

type boothReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	IsActive    *bool   `json:"isActive"`
}

// Create registers a new booth (admin).
func (h *BoothHandler) Create(c echo.Context) error {
	var req boothReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	description, location := "", ""
	if req.Description != nil {
		description = *req.Description
	}
	if req.Location != nil {
		location = *req.Location
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Booths.Create(ctx, strings.TrimSpace(*req.Name), description, location, isActive)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update changes booth metadata (admin).
func (h *BoothHandler) Update(c echo.Context) error {
	var req boothReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Booths.Update(ctx, c.Param("id"), req.Name, req.Description, req.Location, req.IsActive)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type boothStatusReq struct {
	Status string `json:"status"`
}

// SetStatus moves a booth between operator states (admin).  Returning
// a booth to AVAILABLE is refused while a session still holds it.
func (h *BoothHandler) SetStatus(c echo.Context) error {
	var req boothStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.BoothStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !model.ValidBoothStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Booths.SetStatus(ctx, c.Param("id"), status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete removes a booth with no current session (admin).
func (h *BoothHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Booths.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
