package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/core/domain"
)

// RequireAdmin lets through only users flagged as administrators. It must
// run after Session.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.ErrAuthRequired
			}
			if !user.IsAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
