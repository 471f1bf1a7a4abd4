package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// PhotoHandler manages captured photos.  Mutations are only allowed
// while the owning session is ACTIVE; reads are allowed afterwards so
// users can fetch their strip once the session completed.
type PhotoHandler struct {
	Photos   *repository.PhotoRepo
	Sessions *repository.SessionRepo
}

func NewPhotoHandler(p *repository.PhotoRepo, s *repository.SessionRepo) *PhotoHandler {
	return &PhotoHandler{Photos: p, Sessions: s}
}

type createPhotoReq struct {
	ImageURL     string  `json:"imageUrl"`
	PublicID     *string `json:"publicId"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Caption      string  `json:"caption"`
}

// Create records a capture on an ACTIVE session owned by the caller.
func (h *PhotoHandler) Create(c echo.Context) error {
	var req createPhotoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ImageURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imageUrl required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.authorizeSession(ctx, c, c.Param("id")); err != nil {
		return fail(c, err)
	}

	p, err := h.Photos.Create(ctx, c.Param("id"), req.ImageURL, req.Caption, req.PublicID, req.ThumbnailURL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ListBySession returns a page of the session's photos.
func (h *PhotoHandler) ListBySession(c echo.Context) error {
	page, limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.authorizeSession(ctx, c, c.Param("id")); err != nil {
		return fail(c, err)
	}

	photos, total, err := h.Photos.ListBySession(ctx, c.Param("id"), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pageEnvelope(photos, total, page, limit))
}

// Get returns a single photo.
func (h *PhotoHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Photos.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if err := h.authorizeSession(ctx, c, p.SessionID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type updatePhotoReq struct {
	Caption     *string `json:"caption"`
	IsProcessed *bool   `json:"isProcessed"`
}

// Update edits caption or processing state while the session is ACTIVE.
func (h *PhotoHandler) Update(c echo.Context) error {
	var req updatePhotoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Photos.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if err := h.requireActiveSession(ctx, c, p.SessionID); err != nil {
		return fail(c, err)
	}

	updated, err := h.Photos.Update(ctx, p.ID, req.Caption, req.IsProcessed, time.Now().UTC())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a photo while the session is ACTIVE.
func (h *PhotoHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Photos.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if err := h.requireActiveSession(ctx, c, p.SessionID); err != nil {
		return fail(c, err)
	}

	if err := h.Photos.Delete(ctx, p.ID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type reorderReq struct {
	PhotoIDs []string `json:"photoIds"`
}

// Reorder rewrites photo positions within a session.
func (h *PhotoHandler) Reorder(c echo.Context) error {
	var req reorderReq
	if err := c.Bind(&req); err != nil || len(req.PhotoIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photoIds required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.requireActiveSession(ctx, c, c.Param("id")); err != nil {
		return fail(c, err)
	}
	if err := h.Photos.Reorder(ctx, c.Param("id"), req.PhotoIDs); err != nil {
		return fail(c, err)
	}

	photos, total, err := h.Photos.ListBySession(ctx, c.Param("id"), 100, 0)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pageEnvelope(photos, total, 1, 100))
}

// authorizeSession verifies the session exists and belongs to the
// caller (admins skip the ownership check).
func (h *PhotoHandler) authorizeSession(ctx context.Context, c echo.Context, sessionID string) error {
	s, err := h.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	actor := currentActor(c)
	if !actor.Admin && s.UserID != actor.UserID {
		return repository.ErrForbidden
	}
	return nil
}

// requireActiveSession additionally demands the session be ACTIVE.
func (h *PhotoHandler) requireActiveSession(ctx context.Context, c echo.Context, sessionID string) error {
	s, err := h.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	actor := currentActor(c)
	if !actor.Admin && s.UserID != actor.UserID {
		return repository.ErrForbidden
	}
	if s.Status != model.SessionActive {
		return service.ErrSessionNotActive
	}
	return nil
}
