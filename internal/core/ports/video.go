package ports

import (
	"context"

	"github.com/tubehub/api/internal/core/domain"
)

// ListVideosFilter carries the query parameters of a video listing.
type ListVideosFilter struct {
	OwnerID string // empty = every owner
	Query   string // optional: case-insensitive match on title, description or tags
	// IncludeUnpublished lists drafts too; set only for the owner's own channel.
	IncludeUnpublished bool
	SortBy             string // one of the sortable fields; createdAt when empty
	Ascending          bool
	Page               int // 1-based
	Limit              int // max rows per page (capped at 100 by service)
}

// VideoUpdate carries optional video fields; nil means unchanged.
type VideoUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *[]string
	IsPublished *bool
	Thumbnail   *domain.MediaRef
}

// Empty reports whether no field is set.
func (u VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Tags == nil && u.IsPublished == nil && u.Thumbnail == nil
}

// PublishVideoInput is a new video whose media is already on the media host.
type PublishVideoInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	VideoFile   domain.MediaRef
	Thumbnail   domain.MediaRef
	Duration    float64
}

// VideoShare is the payload of a share request.
type VideoShare struct {
	VideoID    string            `json:"videoId"`
	VideoTitle string            `json:"videoTitle"`
	Thumbnail  domain.MediaRef   `json:"thumbnail"`
	ShareLinks map[string]string `json:"shareLinks"`
}

// VideoRepository persists videos. Reads return the owner populated.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (*domain.Video, error)
	FindByID(ctx context.Context, id string) (*domain.Video, error)
	// IncrementViews bumps the view counter and returns the updated video.
	IncrementViews(ctx context.Context, id string) (*domain.Video, error)
	IncrementShares(ctx context.Context, id string) error
	// List returns a page of videos matching filter and the total count.
	List(ctx context.Context, filter ListVideosFilter) ([]*domain.Video, int64, error)
	// The owner-scoped writes return domain.ErrVideoNotOwned when no video
	// with that id belongs to ownerID.
	Update(ctx context.Context, id, ownerID string, update VideoUpdate) (*domain.Video, error)
	TogglePublish(ctx context.Context, id, ownerID string) (*domain.Video, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// WatchHistoryStore records what a user has watched.
type WatchHistoryStore interface {
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
}

// VideoService is the video use-case surface.
type VideoService interface {
	Publish(ctx context.Context, ownerID string, in PublishVideoInput) (*domain.Video, error)
	List(ctx context.Context, filter ListVideosFilter) (*domain.VideoPage, error)
	// Watch returns a video and counts the view. viewerID may be empty.
	Watch(ctx context.Context, videoID, viewerID string) (*domain.Video, error)
	Update(ctx context.Context, videoID, ownerID string, update VideoUpdate) (*domain.Video, error)
	Delete(ctx context.Context, videoID, ownerID string) error
	TogglePublish(ctx context.Context, videoID, ownerID string) (*domain.Video, error)
	Share(ctx context.Context, videoID, baseURL, platform string) (*VideoShare, error)
	// ChannelVideos lists a channel's videos; the owner also sees drafts.
	ChannelVideos(ctx context.Context, username, viewerID string, filter ListVideosFilter) (*domain.VideoPage, error)
}
