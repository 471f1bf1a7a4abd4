package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/hub"
	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// EventPublisher is the realtime fan-out surface handlers announce
// lifecycle changes on.  *hub.Hub implements it.
type EventPublisher interface {
	Publish(ev hub.Event)
}

// currentActor reads the identity stored by the JWT middleware.
func currentActor(c echo.Context) service.Actor {
	uid, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return service.Actor{UserID: uid, Admin: role == model.RoleAdmin}
}

// pageParams parses ?page and ?limit with defaults 1/10 and a hard
// cap of 100 rows per page.
func pageParams(c echo.Context) (page, limit, offset int) {
	page = 1
	limit = 10
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

// pageEnvelope is the uniform list response shape.
func pageEnvelope(items any, total int64, page, limit int) echo.Map {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return echo.Map{
		"items":       items,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": pages,
	}
}

// fail maps domain errors onto HTTP status codes.  Anything unmapped
// is a 500 with a generic message so internals never leak.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrBoothNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrPhotoNotFound),
		errors.Is(err, repository.ErrAssetNotFound),
		errors.Is(err, repository.ErrBankInfoNotFound),
		errors.Is(err, repository.ErrFilterNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})

	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})

	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrBoothNameExists),
		errors.Is(err, repository.ErrBoothUnavailable),
		errors.Is(err, repository.ErrFilterExists),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrUserHasActiveSession):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})

	case errors.Is(err, repository.ErrInsufficientPoints),
		errors.Is(err, repository.ErrPhotoLimitReached),
		errors.Is(err, repository.ErrSessionNotActive),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrSessionNotPending),
		errors.Is(err, service.ErrSessionNotActive),
		errors.Is(err, service.ErrSessionCompleted),
		errors.Is(err, service.ErrSessionTerminal),
		errors.Is(err, service.ErrSessionActive),
		errors.Is(err, service.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
