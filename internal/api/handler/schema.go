package handler

import (
	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"fullName"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"omitempty,min=8"`
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

func (r updateAccountRequest) toUpdate() ports.AccountUpdate {
	return ports.AccountUpdate{FullName: r.FullName, Email: r.Email}
}

type updateChannelRequest struct {
	ChannelDescription *string             `json:"channelDescription" validate:"omitempty,max=5000"`
	ChannelTags        *[]string           `json:"channelTags"`
	SocialLinks        *domain.SocialLinks `json:"socialLinks"`
}

func (r updateChannelRequest) toUpdate() ports.ChannelUpdate {
	return ports.ChannelUpdate{
		Description: r.ChannelDescription,
		Tags:        r.ChannelTags,
		SocialLinks: r.SocialLinks,
	}
}

type notificationSettingsRequest struct {
	EmailNotification    *bool `json:"emailNotification"`
	SubscriptionActivity *bool `json:"subscriptionActivity"`
	CommentActivity      *bool `json:"commentActivity"`
}

func (r notificationSettingsRequest) toUpdate() ports.NotificationUpdate {
	return ports.NotificationUpdate{
		EmailNotification:    r.EmailNotification,
		SubscriptionActivity: r.SubscriptionActivity,
		CommentActivity:      r.CommentActivity,
	}
}

type shareLinkResponse struct {
	ShareLink string `json:"shareLink"`
}

type publishVideoRequest struct {
	Title       string          `json:"title" validate:"omitempty,max=200"`
	Description string          `json:"description" validate:"omitempty,max=5000"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	VideoFile   domain.MediaRef `json:"videoFile"`
	Thumbnail   domain.MediaRef `json:"thumbnail"`
	Duration    float64         `json:"duration"`
}

func (r publishVideoRequest) toInput() ports.PublishVideoInput {
	return ports.PublishVideoInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		VideoFile:   r.VideoFile,
		Thumbnail:   r.Thumbnail,
		Duration:    r.Duration,
	}
}

type updateVideoRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Category    *string          `json:"category"`
	Tags        *[]string        `json:"tags"`
	IsPublished *bool            `json:"isPublished"`
	Thumbnail   *domain.MediaRef `json:"thumbnail"`
}

func (r updateVideoRequest) toUpdate() ports.VideoUpdate {
	return ports.VideoUpdate{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		IsPublished: r.IsPublished,
		Thumbnail:   r.Thumbnail,
	}
}

type videoListResponse struct {
	Videos       []*domain.Video `json:"videos"`
	TotalResults int64           `json:"totalResults"`
	CurrentPage  int             `json:"currentPage"`
	TotalPages   int             `json:"totalPages"`
}

type channelVideosResponse struct {
	Videos      []*domain.Video `json:"videos"`
	TotalVideos int64           `json:"totalVideos"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
}
