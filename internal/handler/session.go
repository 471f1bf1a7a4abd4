package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/config"
	"github.com/minhvt/photobooth-backend/internal/hub"
	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/queue"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// SessionHandler exposes the session lifecycle over HTTP.  State
// changes go through the coordinator; this layer only binds input,
// settles points, and emits realtime plus broker events afterwards.
type SessionHandler struct {
	Cfg      config.Config
	Coord    *service.Coordinator
	Sessions *repository.SessionRepo
	Assets   *repository.AssetRepo
	Points   *service.PointsLedger
	Hub      EventPublisher
}

func NewSessionHandler(cfg config.Config, coord *service.Coordinator, sessions *repository.SessionRepo,
	assets *repository.AssetRepo, points *service.PointsLedger, h EventPublisher) *SessionHandler {
	return &SessionHandler{Cfg: cfg, Coord: coord, Sessions: sessions, Assets: assets, Points: points, Hub: h}
}

type createSessionReq struct {
	PhotoboothID string `json:"photoboothId"`
	MaxPhotos    *int   `json:"maxPhotos"`
	Notes        string `json:"notes"`
}

type stampReq struct {
	StartedAt   string `json:"startedAt"`
	CompletedAt string `json:"completedAt"`
}

// Create reserves a booth and opens a PENDING session.  The session
// fee is debited first; any failure after that credits it back so the
// user never pays for a session that does not exist.
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PhotoboothID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photoboothId required"})
	}
	maxPhotos := model.DefaultPhotosPerSession
	if req.MaxPhotos != nil {
		maxPhotos = *req.MaxPhotos
	}
	if maxPhotos < model.MinPhotosPerSession || maxPhotos > model.MaxPhotosPerSession {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxPhotos must be between 1 and 20"})
	}

	actor := currentActor(c)
	if actor.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing auth context"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Points.Debit(ctx, actor.UserID, h.Cfg.SessionCostPoints); err != nil {
		return fail(c, err)
	}
	s, err := h.Coord.Create(ctx, actor.UserID, req.PhotoboothID, maxPhotos, req.Notes)
	if err != nil {
		// Refund the fee; a failed refund is logged, not surfaced.
		if cerr := h.Points.Credit(context.Background(), actor.UserID, h.Cfg.SessionCostPoints); cerr != nil {
			c.Logger().Errorf("refund after failed session create: user=%s: %v", actor.UserID, cerr)
		}
		return fail(c, err)
	}

	publishLifecycle(s, "created")
	return c.JSON(http.StatusCreated, s)
}

// Get returns a session; non-admins can only read their own.
func (h *SessionHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	actor := currentActor(c)
	if !actor.Admin && s.UserID != actor.UserID {
		return fail(c, repository.ErrForbidden)
	}
	return c.JSON(http.StatusOK, s)
}

// Start activates a PENDING session and announces it on the hub.
func (h *SessionHandler) Start(c echo.Context) error {
	at, err := bindStamp(c, func(r stampReq) string { return r.StartedAt })
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startedAt timestamp"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Coord.Start(ctx, c.Param("id"), currentActor(c), at)
	if err != nil {
		return fail(c, err)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventStartSession, Data: echo.Map{"user_id": s.UserID}})
	publishLifecycle(s, "started")
	return c.JSON(http.StatusOK, s)
}

// Complete finishes an ACTIVE session and frees its booth.
func (h *SessionHandler) Complete(c echo.Context) error {
	at, err := bindStamp(c, func(r stampReq) string { return r.CompletedAt })
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid completedAt timestamp"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Coord.Complete(ctx, c.Param("id"), currentActor(c), at)
	if err != nil {
		return fail(c, err)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventStopSession, Data: echo.Map{"user_id": s.UserID}})
	publishLifecycle(s, "completed")
	return c.JSON(http.StatusOK, s)
}

// Cancel aborts a PENDING or ACTIVE session.
func (h *SessionHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Coord.Cancel(ctx, c.Param("id"), currentActor(c))
	if err != nil {
		return fail(c, err)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventStopSession, Data: echo.Map{"user_id": s.UserID}})
	publishLifecycle(s, "cancelled")
	return c.JSON(http.StatusOK, s)
}

// AddFilter attaches a filter asset to the session.
func (h *SessionHandler) AddFilter(c echo.Context) error {
	filterID := c.Param("filterId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	asset, err := h.Assets.Get(ctx, filterID)
	if err != nil {
		return fail(c, err)
	}
	if asset.Type != model.AssetFilter {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "asset is not a filter"})
	}

	if err := h.Coord.AddFilter(ctx, c.Param("id"), filterID, currentActor(c)); err != nil {
		return fail(c, err)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventFilterAdded, Data: echo.Map{"filter_id": filterID}})

	s, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// RemoveFilter detaches a filter asset from the session.
func (h *SessionHandler) RemoveFilter(c echo.Context) error {
	filterID := c.Param("filterId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Coord.RemoveFilter(ctx, c.Param("id"), filterID, currentActor(c)); err != nil {
		return fail(c, err)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventFilterRemoved, Data: echo.Map{"filter_id": filterID}})

	s, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// StartCapture notifies the kiosk that the user pressed the shutter.
// It is a pure realtime signal; no session state changes here.
func (h *SessionHandler) StartCapture(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	actor := currentActor(c)
	if !actor.Admin && s.UserID != actor.UserID {
		return fail(c, repository.ErrForbidden)
	}
	if s.Status != model.SessionActive {
		return fail(c, service.ErrSessionNotActive)
	}

	h.Hub.Publish(hub.Event{Type: hub.EventStartCapture, Data: echo.Map{"session_id": s.ID}})
	return c.JSON(http.StatusOK, echo.Map{"status": "capture_started"})
}

// bindStamp extracts an optional RFC3339 timestamp from the body.
// An empty body means "no timestamp"; a body that fails to bind is an
// error so malformed JSON is not silently ignored.
func bindStamp(c echo.Context, pick func(stampReq) string) (*time.Time, error) {
	var req stampReq
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	raw := pick(req)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// publishLifecycle mirrors the transition onto the message broker.
// Failures are already logged by the publisher and never block the
// HTTP response.
func publishLifecycle(s model.Session, transition string) {
	ev := queue.SessionLifecycleEvent{
		SessionID:    s.ID,
		UserID:       s.UserID,
		PhotoboothID: s.PhotoboothID,
		Status:       string(s.Status),
		Transition:   transition,
		PhotoCount:   s.PhotoCount,
		MaxPhotos:    s.MaxPhotos,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = service.PublishSessionLifecycle(context.Background(), ev) }()
}
