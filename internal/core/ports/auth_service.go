package ports

import (
	"context"
	"time"

	"github.com/tubehub/api/internal/core/domain"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims is the verified identity carried by an access token.
type AccessClaims struct {
	UserID    string
	Email     string
	Username  string
	FullName  string
	ExpiresAt time.Time
}

// TokenVerifier checks tokens minted by the issuer.
type TokenVerifier interface {
	VerifyAccess(token string) (*AccessClaims, error)
	// AccessSubject returns the user id of an authentic access token even if
	// it has expired.
	AccessSubject(token string) (string, error)
	VerifyRefresh(token string) (string, error)
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	// Logout clears the stored refresh token. An empty userID is a no-op.
	Logout(ctx context.Context, userID string) error
	// LogoutRefreshToken clears the stored token only while it still equals
	// refreshToken; a rotated-out token leaves the live session intact.
	LogoutRefreshToken(ctx context.Context, userID, refreshToken string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	RevokeSessions(ctx context.Context, userID string) error
}

type AccountService interface {
	UpdateAccount(ctx context.Context, userID string, in AccountUpdate) (*domain.User, error)
	GetChannel(ctx context.Context, username string) (*domain.Channel, error)
	UpdateChannel(ctx context.Context, userID string, in ChannelUpdate) (*domain.User, error)
	UpdateNotificationSettings(ctx context.Context, userID string, in NotificationUpdate) (*domain.NotificationSettings, error)
}
