package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func registeredRoutes(t *testing.T) map[string]bool {
	t.Helper()
	e := echo.New()
	h := Handlers{}
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	RegisterRoutes(e, h)
	RegisterAPI(e, h, "secret", passthrough)
	RegisterAdmin(e, h, "secret")

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestSessionRouteShapes(t *testing.T) {
	routes := registeredRoutes(t)

	want := []string{
		http.MethodPost + " /v1/sessions",
		http.MethodGet + " /v1/sessions/:id",
		http.MethodPut + " /v1/sessions/:id/start",
		http.MethodPut + " /v1/sessions/:id/complete",
		http.MethodPut + " /v1/sessions/:id/cancel",
		http.MethodPost + " /v1/sessions/:id/capture",
		http.MethodPost + " /v1/sessions/:id/filters/:filterId",
		http.MethodDelete + " /v1/sessions/:id/filters/:filterId",
	}
	for _, r := range want {
		if !routes[r] {
			t.Errorf("route %q not registered", r)
		}
	}

	// The old verb shapes must be gone.
	for _, r := range []string{
		http.MethodPost + " /v1/sessions/:id/start",
		http.MethodPost + " /v1/sessions/:id/complete",
		http.MethodPost + " /v1/sessions/:id/cancel",
		http.MethodPost + " /v1/sessions/:id/filters",
	} {
		if routes[r] {
			t.Errorf("stale route %q still registered", r)
		}
	}
}

func TestOpenAndAdminSurfaces(t *testing.T) {
	routes := registeredRoutes(t)

	for _, r := range []string{
		http.MethodGet + " /healthz",
		http.MethodPost + " /v1/auth/register",
		http.MethodPost + " /v1/auth/login",
		http.MethodPost + " /webhooks/sepay",
		http.MethodGet + " /ws/photobooth",
		http.MethodPost + " /v1/admin/cleanup/expired-sessions",
		http.MethodDelete + " /v1/admin/sessions/:id",
	} {
		if !routes[r] {
			t.Errorf("route %q not registered", r)
		}
	}
}
