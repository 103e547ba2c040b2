package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/core/ports"
)

type UserHandler struct {
	accountService ports.AccountService
}

func NewUserHandler(accountService ports.AccountService) *UserHandler {
	return &UserHandler{accountService: accountService}
}

// CurrentUser returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ApiResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/current-user [get]
func (h *UserHandler) CurrentUser(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount changes the caller's full name and/or email.
//
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /users/update-account [put]
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.accountService.UpdateAccount(c.Request().Context(), user.ID, req.toUpdate())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "Account details updated successfully")
}
