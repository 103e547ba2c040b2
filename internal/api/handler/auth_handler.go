package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tubehub/api/internal/api/middleware"
	"github.com/tubehub/api/internal/core/ports"
)

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	// Secure is set in production so cookies only travel over HTTPS.
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, log: log}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, user, "User created successfully")
}

// Login authenticates a user, sets the session cookies and returns both tokens.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Username or email, and password"
// @Success      200   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.setSessionCookies(c, res.Tokens)
	return respond(c, http.StatusOK, loginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout revokes the caller's refresh token when the caller can be
// identified and always clears the session cookies.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Success      200  {object}  ApiResponse
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.SubjectID(c)
	var err error
	if refresh := middleware.SubjectRefreshToken(c); refresh != "" {
		err = h.authService.LogoutRefreshToken(c.Request().Context(), userID, refresh)
	} else {
		err = h.authService.Logout(c.Request().Context(), userID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to clear refresh token on logout")
	}

	h.clearSessionCookies(c)
	return respond(c, http.StatusOK, nil, "User logged out successfully")
}

// RefreshToken exchanges a refresh token for a new token pair.
//
// @Summary      Refresh the access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when not sent as a cookie"
// @Success      200   {object}  ApiResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	tokens, err := h.authService.Refresh(c.Request().Context(), middleware.RefreshTokenFrom(c))
	if err != nil {
		return err
	}

	h.setSessionCookies(c, tokens)
	return respond(c, http.StatusOK, tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "Access token refreshed successfully")
}

// ChangePassword replaces the caller's password after checking the old one.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users/change-password [patch]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Password changed successfully")
}

func (h *AuthHandler) setSessionCookies(c echo.Context, tokens ports.TokenPair) {
	c.SetCookie(h.cookie(middleware.AccessTokenCookie, tokens.AccessToken))
	c.SetCookie(h.cookie(middleware.RefreshTokenCookie, tokens.RefreshToken))
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		ck := h.cookie(name, "")
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}

func (h *AuthHandler) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
