package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a userID extraction function that reads the
// value stored by JWTAuth. When no user is authenticated, "guest" is
// returned so rate-limit keys for anonymous traffic collapse together.

import "github.com/labstack/echo/v4"

// userID extracts the authenticated user identifier from context. It
// returns "guest" when the request carries no valid token.
func userID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "guest"
}
