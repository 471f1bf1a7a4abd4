package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/minhvt/photobooth-backend/internal/handler"    // import the handlers that implement business logic
	"github.com/minhvt/photobooth-backend/internal/hub"        // realtime fan-out hub
	"github.com/minhvt/photobooth-backend/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/minhvt/photobooth-backend/internal/model"
)

// Handlers bundles every HTTP handler the router wires up.  main
// constructs it once with all dependencies resolved.
type Handlers struct {
	Auth          *handler.AuthHandler
	Booths        *handler.BoothHandler
	Sessions      *handler.SessionHandler
	Photos        *handler.PhotoHandler
	Assets        *handler.AssetHandler
	Bank          *handler.BankHandler
	AdminUsers    *handler.AdminUserHandler
	AdminSessions *handler.AdminSessionHandler
	Webhook       *handler.WebhookHandler
	Hub           *hub.Hub
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check, the auth endpoints,
// the payment gateway webhook and the websocket upgrade.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", handler.Health)

	// Token issuance lives under /v1/auth and is open by definition.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// The gateway authenticates transfers on its side; the payload
	// itself carries the transfer identity we verify.
	e.POST("/webhooks/sepay", h.Webhook.Sepay)

	// Kiosks connect before a user signs in, so the upgrade is open.
	e.GET("/ws/photobooth", func(c echo.Context) error {
		return hub.ServeWS(h.Hub, c.Response(), c.Request())
	})
}

// RegisterAPI registers the authenticated user-facing surface.  Every
// route here accepts both roles; write access to foreign sessions is
// rejected per-handler via ownership checks.  cacheMW is applied only
// to the slow-moving catalog reads so session state stays fresh.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))

	g.GET("/me", h.Auth.Me)
	g.GET("/photobooth/status", h.Booths.Status)

	// Booth registry reads.
	g.GET("/photobooths", h.Booths.List)
	g.GET("/photobooths/available", h.Booths.ListAvailable)
	g.GET("/photobooths/:id", h.Booths.Get)

	// Session lifecycle.  Transitions are idempotent targets, hence PUT;
	// filter attach and detach share the same path shape.
	g.POST("/sessions", h.Sessions.Create)
	g.GET("/sessions/:id", h.Sessions.Get)
	g.PUT("/sessions/:id/start", h.Sessions.Start)
	g.PUT("/sessions/:id/complete", h.Sessions.Complete)
	g.PUT("/sessions/:id/cancel", h.Sessions.Cancel)
	g.POST("/sessions/:id/capture", h.Sessions.StartCapture)
	g.POST("/sessions/:id/filters/:filterId", h.Sessions.AddFilter)
	g.DELETE("/sessions/:id/filters/:filterId", h.Sessions.RemoveFilter)

	// Photos hang off their session.
	g.POST("/sessions/:id/photos", h.Photos.Create)
	g.GET("/sessions/:id/photos", h.Photos.ListBySession)
	g.PUT("/sessions/:id/photos/reorder", h.Photos.Reorder)
	g.GET("/photos/:id", h.Photos.Get)
	g.PUT("/photos/:id", h.Photos.Update)
	g.DELETE("/photos/:id", h.Photos.Delete)

	// Catalog reads change rarely; these take the response cache.
	g.GET("/assets", h.Assets.List, cacheMW)
	g.GET("/assets/:id", h.Assets.Get, cacheMW)
	g.GET("/bank-info", h.Bank.Current, cacheMW)
}

// RegisterAdmin registers the operator surface under /v1/admin.  The
// whole group demands the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	// User management.
	g.GET("/users", h.AdminUsers.List)
	g.GET("/users/:id", h.AdminUsers.Get)
	g.PUT("/users/:id", h.AdminUsers.Update)
	g.DELETE("/users/:id", h.AdminUsers.Delete)
	g.POST("/users/:id/points", h.AdminUsers.AddPoints)

	// Booth management.
	g.POST("/photobooths", h.Booths.Create)
	g.PUT("/photobooths/:id", h.Booths.Update)
	g.PUT("/photobooths/:id/status", h.Booths.SetStatus)
	g.DELETE("/photobooths/:id", h.Booths.Delete)

	// Session oversight.
	g.GET("/sessions", h.AdminSessions.List)
	g.GET("/sessions/stats", h.AdminSessions.Stats)
	g.PUT("/sessions/:id", h.AdminSessions.Update)
	g.DELETE("/sessions/:id", h.AdminSessions.Delete)
	g.POST("/cleanup/expired-sessions", h.AdminSessions.CleanupExpired)

	// Asset catalog management.
	g.POST("/assets", h.Assets.Create)
	g.PUT("/assets/:id", h.Assets.Update)
	g.DELETE("/assets/:id", h.Assets.Delete)

	// Bank info management.
	g.POST("/bank-info", h.Bank.CreateOrUpdate)
	g.PUT("/bank-info/:id", h.Bank.Update)
	g.DELETE("/bank-info/:id", h.Bank.Delete)
}
