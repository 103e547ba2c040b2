package domain

import "time"

// MediaRef points at an asset held by the external media host.
type MediaRef struct {
	PublicID string `json:"publicId,omitempty"`
	URL      string `json:"url,omitempty"`
}

type SocialLinks struct {
	X         string `json:"x,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Website   string `json:"website,omitempty"`
}

type NotificationSettings struct {
	EmailNotification    bool `json:"emailNotification"`
	SubscriptionActivity bool `json:"subscriptionActivity"`
	CommentActivity      bool `json:"commentActivity"`
}

// DefaultNotificationSettings is applied to newly registered users.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{EmailNotification: true, SubscriptionActivity: true, CommentActivity: true}
}

// User models an account and its channel. PasswordHash and RefreshToken are
// never serialised; the session middleware loads users with both left empty.
type User struct {
	ID                   string               `json:"_id"`
	Username             string               `json:"username"`
	Email                string               `json:"email"`
	FullName             string               `json:"fullName"`
	Avatar               *MediaRef            `json:"avatar,omitempty"`
	CoverImage           *MediaRef            `json:"coverImage,omitempty"`
	PasswordHash         string               `json:"-"`
	RefreshToken         string               `json:"-"`
	IsVerified           bool                 `json:"isVerified"`
	IsAdmin              bool                 `json:"isAdmin"`
	WatchHistory         []string             `json:"watchHistory"`
	ChannelDescription   string               `json:"channelDescription"`
	ChannelTags          []string             `json:"channelTags"`
	SocialLinks          SocialLinks          `json:"socialLinks"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// Public returns a copy without secret fields.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = ""
	return &c
}

// Channel is the publicly visible projection of a user.
type Channel struct {
	ID                 string      `json:"_id"`
	Username           string      `json:"username"`
	FullName           string      `json:"fullName"`
	Avatar             *MediaRef   `json:"avatar,omitempty"`
	CoverImage         *MediaRef   `json:"coverImage,omitempty"`
	ChannelDescription string      `json:"channelDescription"`
	ChannelTags        []string    `json:"channelTags"`
	SocialLinks        SocialLinks `json:"socialLinks"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// ChannelOf projects u to its channel view.
func ChannelOf(u *User) *Channel {
	return &Channel{
		ID:                 u.ID,
		Username:           u.Username,
		FullName:           u.FullName,
		Avatar:             u.Avatar,
		CoverImage:         u.CoverImage,
		ChannelDescription: u.ChannelDescription,
		ChannelTags:        u.ChannelTags,
		SocialLinks:        u.SocialLinks,
		CreatedAt:          u.CreatedAt,
	}
}
