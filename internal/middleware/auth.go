package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
)

const SessionCookieName = "prodreg_session"

const operatorKey = "operator"

// AdminAPIKeyAuth validates the X-API-Key header against ADMIN_API_KEY.
// Used for ADMIN API endpoints. Returns 401 if authentication fails.
func AdminAPIKeyAuth() echo.MiddlewareFunc {
	adminKey := os.Getenv("ADMIN_API_KEY")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ADMIN_API_KEY environment variable not configured")
			}

			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing admin API key")
			}

			if !constantEqual(adminKey, key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin API key")
			}

			// The key travels in a header a browser never adds on its own, so it
			// stands in for the request token as well
			c.Set(operatorKey, true)
			c.Set(tokenVerifiedKey, true)
			return next(c)
		}
	}
}

// WebAuth validates requests via X-API-Key header OR session cookie.
// Used for WEB UI endpoints. Redirects to login if authentication fails.
func WebAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			// Public routes: login page and static assets
			if path == "/web/login" ||
				strings.HasPrefix(path, "/web/static/") {
				return next(c)
			}

			// Check X-API-Key header first (for programmatic access)
			if key := c.Request().Header.Get("X-API-Key"); key != "" && ValidateAdminKey(key) {
				c.Set(operatorKey, true)
				return next(c)
			}

			// Check session cookie
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				if sessionID := cookie.Value; sessionID != "" {
					if _, ok := GetSession(c.Request().Context(), sessionID); ok {
						c.Set(operatorKey, true)
						return next(c)
					}
				}
			}

			// Not authenticated - redirect to login
			return c.Redirect(http.StatusFound, "/web/login")
		}
	}
}

// IsOperator reports whether an operator middleware accepted the request.
func IsOperator(c echo.Context) bool {
	ok, _ := c.Get(operatorKey).(bool)
	return ok
}

// ValidateAdminKey checks if the provided key matches ADMIN_API_KEY
// using constant-time comparison to prevent timing attacks.
func ValidateAdminKey(key string) bool {
	adminKey := os.Getenv("ADMIN_API_KEY")
	if adminKey == "" {
		return false
	}
	return constantEqual(adminKey, key)
}

// constantEqual provides constant-time string equality to avoid timing attacks.
func constantEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
