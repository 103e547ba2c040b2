package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
	"github.com/tubehub/api/internal/pkg/metrics"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	userKey         = "user"
	userIDKey       = "userID"
	refreshTokenKey = "refreshToken"
)

// Session authenticates the request with an access token taken from the
// accessToken cookie or the Authorization bearer header, in that order, and
// stores the public user record in the context.
func Session(verifier ports.TokenVerifier, users ports.PublicUserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := accessToken(c)
			if token == "" {
				metrics.SessionRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrAuthRequired
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				metrics.SessionRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidAccessToken.Wrap(err)
			}

			user, err := users.FindPublicByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.SessionRejectionsTotal.WithLabelValues("unknown_user").Inc()
					return domain.ErrInvalidAccessToken
				}
				return err
			}

			c.Set(userKey, user)
			c.Set(userIDKey, user.ID)
			return next(c)
		}
	}
}

// LenientSession resolves who is making the request without ever rejecting
// it. Identity comes from a valid access token, then an authentic but
// expired access token, then a valid refresh token in the cookie or body.
// When the refresh token was the source it is kept in the context so the
// handler can check it against the stored one.
func LenientSession(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, refresh := resolveSubject(c, verifier)
			if id != "" {
				c.Set(userIDKey, id)
			}
			if refresh != "" {
				c.Set(refreshTokenKey, refresh)
			}
			return next(c)
		}
	}
}

// OptionalSession stores the user when a valid access token is present and
// lets anonymous requests through otherwise.
func OptionalSession(verifier ports.TokenVerifier, users ports.PublicUserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := accessToken(c)
			if token == "" {
				return next(c)
			}
			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				return next(c)
			}
			if user, err := users.FindPublicByID(c.Request().Context(), claims.UserID); err == nil {
				c.Set(userKey, user)
				c.Set(userIDKey, user.ID)
			}
			return next(c)
		}
	}
}

func resolveSubject(c echo.Context, verifier ports.TokenVerifier) (userID, refreshToken string) {
	if token := accessToken(c); token != "" {
		if claims, err := verifier.VerifyAccess(token); err == nil {
			return claims.UserID, ""
		}
		if id, err := verifier.AccessSubject(token); err == nil {
			return id, ""
		}
	}
	if token := RefreshTokenFrom(c); token != "" {
		if id, err := verifier.VerifyRefresh(token); err == nil {
			return id, token
		}
	}
	return "", ""
}

// CurrentUser returns the user stored by Session, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// SubjectID returns the id resolved by Session or LenientSession, or "".
func SubjectID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// SubjectRefreshToken returns the refresh token LenientSession resolved the
// identity from, or "" when an access token was used.
func SubjectRefreshToken(c echo.Context) string {
	token, _ := c.Get(refreshTokenKey).(string)
	return token
}

// RefreshTokenFrom reads the refresh token from its cookie, falling back to
// a JSON body field named refreshToken. The body is consumed.
func RefreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.RefreshToken)
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
