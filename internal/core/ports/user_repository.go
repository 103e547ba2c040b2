package ports

import (
	"context"

	"github.com/tubehub/api/internal/core/domain"
)

// CredentialStore is the persistence surface the auth flows need.
type CredentialStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns the full record, secrets included.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByLogin matches either identifier; empty identifiers are ignored.
	FindByLogin(ctx context.Context, username, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RefreshTokenStore
}

// RefreshTokenStore owns the single rotating refresh token of each user.
type RefreshTokenStore interface {
	// SetRefreshToken overwrites the stored token unconditionally.
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken replaces the stored token with next only if it still
	// equals presented. It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, presented, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, id string) error
}

// PublicUserFinder loads users with secret fields excluded.
type PublicUserFinder interface {
	FindPublicByID(ctx context.Context, id string) (*domain.User, error)
}

// ProfileStore covers account and channel maintenance.
type ProfileStore interface {
	FindPublicByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*domain.User, error)
	UpdateChannel(ctx context.Context, id string, update ChannelUpdate) (*domain.User, error)
	UpdateNotificationSettings(ctx context.Context, id string, update NotificationUpdate) (*domain.NotificationSettings, error)
}

// AccountUpdate carries optional account fields; nil means unchanged.
type AccountUpdate struct {
	FullName *string
	Email    *string
}

// ChannelUpdate carries optional channel fields; nil means unchanged.
type ChannelUpdate struct {
	Description *string
	Tags        *[]string
	SocialLinks *domain.SocialLinks
}

// NotificationUpdate carries optional notification flags; nil means unchanged.
type NotificationUpdate struct {
	EmailNotification    *bool
	SubscriptionActivity *bool
	CommentActivity      *bool
}

// Empty reports whether no flag is set.
func (u NotificationUpdate) Empty() bool {
	return u.EmailNotification == nil && u.SubscriptionActivity == nil && u.CommentActivity == nil
}
