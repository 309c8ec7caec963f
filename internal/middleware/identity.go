package middleware

// identity.go holds helpers shared across middleware files for
// attributing a request to a user. Unauthenticated requests are
// keyed as "anon" so public endpoints can still be rate limited.

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated user identifier stored by
// JWTAuth, or "anon" when the request carries no identity.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
