package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

type AdminHandler struct {
	authService ports.AuthService
}

func NewAdminHandler(authService ports.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// RevokeSessions drops a user's refresh token, ending their session at the
// next refresh.
//
// @Summary      Revoke a user's sessions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  ApiResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id}/sessions [delete]
func (h *AdminHandler) RevokeSessions(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return domain.Validation("User id is required")
	}
	if err := h.authService.RevokeSessions(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "User sessions revoked")
}
