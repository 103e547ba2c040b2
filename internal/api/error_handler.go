package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tubehub/api/internal/api/handler"
	"github.com/tubehub/api/internal/core/domain"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindUnauthorized:    http.StatusUnauthorized,
	domain.KindForbidden:       http.StatusForbidden,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindConflict:        http.StatusConflict,
	domain.KindTooManyRequests: http.StatusTooManyRequests,
	domain.KindInternal:        http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {success, message, errors, stack}.
// The error chain is exposed as stack only when production is false.
func NewHTTPErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if !production {
			resp.Stack = fmt.Sprintf("%+v", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	resp := handler.ErrorResponse{Errors: []string{}}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp.Message = fmt.Sprintf("%v", he.Message)
		if he.Code == http.StatusNotFound && he.Message == http.StatusText(http.StatusNotFound) {
			resp.Message = "Not Found - " + c.Request().URL.Path
		}
		return he.Code, resp
	}

	var de *domain.Error
	if errors.As(err, &de) {
		code := kindStatus[de.Kind]
		resp.Message = de.Message
		if len(de.Errors) > 0 {
			resp.Errors = de.Errors
		}
		if code >= http.StatusInternalServerError {
			logUnhandled(log, err, c)
		}
		return code, resp
	}

	// Unexpected error: log the real cause, return a generic message.
	logUnhandled(log, err, c)
	resp.Message = "Internal server error"
	return http.StatusInternalServerError, resp
}

func logUnhandled(log zerolog.Logger, err error, c echo.Context) {
	log.Error().
		Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
}
