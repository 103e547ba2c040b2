package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
	"github.com/tubehub/api/internal/pkg/metrics"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// sortableVideoFields lists the fields a listing may be ordered by.
var sortableVideoFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"views":     true,
	"likes":     true,
	"shares":    true,
	"title":     true,
	"duration":  true,
}

// ChannelDirectory resolves channels and records watch history.
type ChannelDirectory interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ports.WatchHistoryStore
}

type VideoService struct {
	videos   ports.VideoRepository
	channels ChannelDirectory
	logger   zerolog.Logger
}

func NewVideoService(videos ports.VideoRepository, channels ChannelDirectory, logger zerolog.Logger) *VideoService {
	return &VideoService{videos: videos, channels: channels, logger: logger}
}

// Publish stores the metadata of a video already uploaded to the media host.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in ports.PublishVideoInput) (*domain.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if title == "" || description == "" || category == "" {
		return nil, domain.Validation("Title, description, and category are required")
	}
	if in.VideoFile.URL == "" || in.Thumbnail.URL == "" {
		return nil, domain.ErrVideoMedia
	}
	if in.Duration < 0 {
		return nil, domain.Validation("Duration must not be negative")
	}

	now := time.Now().UTC()
	video, err := s.videos.Create(ctx, &domain.Video{
		Title:       title,
		Description: description,
		Category:    category,
		Tags:        cleanTags(in.Tags),
		VideoFile:   in.VideoFile,
		Thumbnail:   in.Thumbnail,
		Duration:    in.Duration,
		IsPublished: true,
		Owner:       domain.VideoOwner{ID: ownerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("video_id", video.ID).Str("owner_id", ownerID).Msg("video published")
	return video, nil
}

// List returns published videos only.
func (s *VideoService) List(ctx context.Context, filter ports.ListVideosFilter) (*domain.VideoPage, error) {
	filter.IncludeUnpublished = false
	return s.list(ctx, filter)
}

// Watch returns the video, counts the view and appends it to the viewer's
// watch history.
func (s *VideoService) Watch(ctx context.Context, videoID, viewerID string) (*domain.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(viewerID) {
		return nil, domain.ErrVideoNotFound
	}

	video, err = s.videos.IncrementViews(ctx, videoID)
	if err != nil {
		return nil, err
	}
	metrics.VideoViewsTotal.Inc()

	if viewerID != "" {
		if err := s.channels.AddToWatchHistory(ctx, viewerID, videoID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", viewerID).Str("video_id", videoID).Msg("failed to update watch history")
		}
	}
	return video, nil
}

// Update edits the caller's own video. At least one field is required.
func (s *VideoService) Update(ctx context.Context, videoID, ownerID string, in ports.VideoUpdate) (*domain.Video, error) {
	in.Title = trimmedOrNil(in.Title)
	in.Description = trimmedOrNil(in.Description)
	in.Category = trimmedOrNil(in.Category)
	if in.Tags != nil {
		tags := cleanTags(*in.Tags)
		in.Tags = &tags
	}
	if in.Thumbnail != nil && in.Thumbnail.URL == "" {
		in.Thumbnail = nil
	}
	if in.Empty() {
		return nil, domain.Validation("At least one field is required")
	}

	video, err := s.videos.Update(ctx, videoID, ownerID, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("video_id", videoID).Msg("video updated")
	return video, nil
}

func (s *VideoService) Delete(ctx context.Context, videoID, ownerID string) error {
	if err := s.videos.Delete(ctx, videoID, ownerID); err != nil {
		return err
	}
	s.logger.Info().Str("video_id", videoID).Str("owner_id", ownerID).Msg("video deleted")
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, videoID, ownerID string) (*domain.Video, error) {
	video, err := s.videos.TogglePublish(ctx, videoID, ownerID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("video_id", videoID).Bool("published", video.IsPublished).Msg("video publish status toggled")
	return video, nil
}

// Share builds the share links of a published video rooted at baseURL and
// counts the share.
func (s *VideoService) Share(ctx context.Context, videoID, baseURL, platform string) (*ports.VideoShare, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished {
		return nil, domain.ErrVideoNotFound
	}

	videoURL := strings.TrimRight(baseURL, "/") + "/api/v1/videos/" + video.ID
	platform = domain.NormalizePlatform(platform)

	if err := s.videos.IncrementShares(ctx, video.ID); err != nil {
		s.logger.Warn().Err(err).Str("video_id", video.ID).Msg("failed to count share")
	}
	metrics.VideoSharesTotal.WithLabelValues(platform).Inc()

	return &ports.VideoShare{
		VideoID:    video.ID,
		VideoTitle: video.Title,
		Thumbnail:  video.Thumbnail,
		ShareLinks: domain.ShareLinks(videoURL, video.Title, platform),
	}, nil
}

func (s *VideoService) ChannelVideos(ctx context.Context, username, viewerID string, filter ports.ListVideosFilter) (*domain.VideoPage, error) {
	username = domain.NormalizeIdentifier(username)
	if username == "" {
		return nil, domain.Validation("Username is required")
	}

	owner, err := s.channels.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}

	filter.OwnerID = owner.ID
	filter.Query = ""
	filter.IncludeUnpublished = viewerID != "" && viewerID == owner.ID
	return s.list(ctx, filter)
}

func (s *VideoService) list(ctx context.Context, filter ports.ListVideosFilter) (*domain.VideoPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if !sortableVideoFields[filter.SortBy] {
		filter.SortBy = "createdAt"
		filter.Ascending = false
	}
	filter.Query = strings.TrimSpace(filter.Query)

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []*domain.Video{}
	}

	return &domain.VideoPage{
		Videos:      videos,
		Total:       total,
		CurrentPage: filter.Page,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
