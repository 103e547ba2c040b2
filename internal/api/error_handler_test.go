package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tubehub/api/internal/api/handler"
	"github.com/tubehub/api/internal/core/domain"
)

func renderError(t *testing.T, err error, production bool) (int, handler.ErrorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop(), production)(err, c)

	var body handler.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.Validation("Password is required"), http.StatusBadRequest, "Password is required"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{domain.ErrForbidden, http.StatusForbidden, "Access forbidden"},
		{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{domain.ErrUserExists, http.StatusConflict, "User with this email or username already exists"},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many login attempts, try again later"},
		{domain.ErrTokenIssuance.Wrap(errors.New("disk full")), http.StatusInternalServerError, "Failed to generate access and refresh tokens"},
		{fmt.Errorf("refresh: %w", domain.ErrRefreshTokenReused), http.StatusUnauthorized, "Refresh token is expired or used"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			code, body := renderError(t, tt.err, true)
			if code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, code)
			}
			if body.Success || body.Message != tt.msg {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestErrorHandler_FieldErrors(t *testing.T) {
	_, body := renderError(t, domain.Validation("Validation failed", "email must be a valid email"), true)
	if len(body.Errors) != 1 || body.Errors[0] != "email must be a valid email" {
		t.Fatalf("unexpected errors: %v", body.Errors)
	}
}

func TestErrorHandler_Stack(t *testing.T) {
	cause := errors.New("socket closed")
	wrapped := domain.Internal("Failed to create user", cause)

	_, dev := renderError(t, wrapped, false)
	if dev.Stack == "" {
		t.Fatalf("expected stack in development")
	}
	_, prod := renderError(t, wrapped, true)
	if prod.Stack != "" {
		t.Fatalf("stack leaked in production: %q", prod.Stack)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, body := renderError(t, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), true)
	if code != http.StatusRequestEntityTooLarge || body.Message != "Request Entity Too Large" {
		t.Fatalf("unexpected response: %d %+v", code, body)
	}
}
