package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/api/middleware"
	"github.com/tubehub/api/internal/core/domain"
)

// sessionUser returns the user placed in the context by the session
// middleware. A missing user means the route was mounted without it.
func sessionUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil || user.ID == "" {
		return nil, domain.ErrAuthRequired
	}
	return user, nil
}

// bindAndValidate decodes the request body into req and runs struct
// validation when a validator is registered.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation("Invalid request payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
