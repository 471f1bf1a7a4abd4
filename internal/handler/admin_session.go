package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/hub"
	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// AdminSessionHandler serves the operator view over sessions: listing,
// stats, metadata edits, hard deletes and the manual expiry sweep.
type AdminSessionHandler struct {
	Coord    *service.Coordinator
	Sessions *repository.SessionRepo
	Hub      EventPublisher
}

func NewAdminSessionHandler(coord *service.Coordinator, s *repository.SessionRepo, h EventPublisher) *AdminSessionHandler {
	return &AdminSessionHandler{Coord: coord, Sessions: s, Hub: h}
}

// List returns a page of sessions filtered by ?status and ?userId.
func (h *AdminSessionHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)

	status := model.SessionStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))
	if status != "" && !model.ValidSessionStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessions, total, err := h.Sessions.List(ctx, status, c.QueryParam("userId"), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pageEnvelope(sessions, total, page, limit))
}

// Stats reports session counts per status.
func (h *AdminSessionHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Sessions.StatusCounts(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

type updateSessionReq struct {
	Notes *string `json:"notes"`
}

// Update edits session metadata.  Status is deliberately absent: all
// transitions go through the lifecycle endpoints.
func (h *AdminSessionHandler) Update(c echo.Context) error {
	var req updateSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Notes != nil {
		if err := h.Sessions.UpdateNotes(ctx, c.Param("id"), *req.Notes); err != nil {
			return fail(c, err)
		}
	}
	s, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete removes a session record.  ACTIVE sessions are refused.
// Kiosks hear about the removal the same way they hear about
// completion and cancellation.
func (h *AdminSessionHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Coord.Remove(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventStopSession, Data: echo.Map{"user_id": s.UserID}})
	publishLifecycle(s, "deleted")
	return c.NoContent(http.StatusNoContent)
}

// CleanupExpired runs the expiry sweep on demand and reports how many
// sessions it transitioned.
func (h *AdminSessionHandler) CleanupExpired(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	n, err := h.Coord.CleanupExpired(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": n})
}
