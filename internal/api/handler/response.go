package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ApiResponse is the success envelope shared by every endpoint.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the failure envelope rendered by the HTTP error handler.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Stack   string   `json:"stack,omitempty"`
}

func respond(c echo.Context, code int, data any, message string) error {
	if data == nil {
		data = struct{}{}
	}
	return c.JSON(code, ApiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < http.StatusBadRequest,
	})
}
