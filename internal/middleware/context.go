package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/prodreg/internal/version"
)

type pageKey struct{}

// Page holds the request facts the shared HTML shell renders.
type Page struct {
	Version  string
	Operator bool
	UserID   int64
}

// PageInfo copies the app version and the caller's identity into the
// request context for the views. Run it after the group's auth middleware.
func PageInfo() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Page{
				Version:  version.Version,
				Operator: IsOperator(c),
				UserID:   UserID(c),
			}
			ctx := context.WithValue(c.Request().Context(), pageKey{}, p)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetPage returns the page facts, falling back to the build version when
// PageInfo did not run.
func GetPage(ctx context.Context) Page {
	if p, ok := ctx.Value(pageKey{}).(Page); ok {
		return p
	}
	return Page{Version: version.Version}
}
