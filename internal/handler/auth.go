package handler

import (
	"context"  // provides context with cancellation for DB calls
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/minhvt/photobooth-backend/internal/config"     // app configuration
	"github.com/minhvt/photobooth-backend/internal/model"      // domain models
	"github.com/minhvt/photobooth-backend/internal/repository" // DB repositories
	"github.com/minhvt/photobooth-backend/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Roles: r}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User   model.User `json:"user"`
	Access tokenPart  `json:"access"`
}

// Register creates a user with the USER role, assigns a transfer code
// and returns a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/name/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.GetByName(ctx, model.RoleUser)
	if err != nil {
		return fail(c, err)
	}
	code, err := h.freePaymentCode(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign payment code failed"})
	}

	u, err := h.Users.Create(ctx, req.Email, req.Name, req.Password, role.ID, code, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, role.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:   u,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login verifies credentials and returns a fresh token.  The same
// message is used for unknown emails and wrong passwords so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.RoleName, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:   u,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

// freePaymentCode draws random codes until one is unused.  Ten tries
// against a 36^8 space failing would mean the RNG is broken, not that
// we were unlucky.
func (h *AuthHandler) freePaymentCode(ctx context.Context) (string, error) {
	for range [10]struct{}{} {
		code, err := utils.NewPaymentCode()
		if err != nil {
			return "", err
		}
		taken, err := h.Users.PaymentCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", repository.ErrConflict
}
