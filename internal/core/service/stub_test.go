package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub user store
// ---------------------------------------------------------------------------

type stubUserStore struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int

	setErr  error // if set, SetRefreshToken returns this error
	swapErr error // if set, SwapRefreshToken returns this error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{byID: make(map[string]*domain.User)}
}

func (s *stubUserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	s.nextID++
	clone := *u
	clone.ID = fmt.Sprintf("%024x", s.nextID)
	s.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubUserStore) FindPublicByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *stubUserStore) FindByLogin(_ context.Context, username, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == username {
			return u.Public(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	return s.mutate(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (s *stubUserStore) SetRefreshToken(_ context.Context, id, token string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.mutate(id, func(u *domain.User) { u.RefreshToken = token })
}

func (s *stubUserStore) SwapRefreshToken(_ context.Context, id, presented, next string) (bool, error) {
	if s.swapErr != nil {
		return false, s.swapErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok || u.RefreshToken != presented {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (s *stubUserStore) ClearRefreshToken(_ context.Context, id string) error {
	return s.mutate(id, func(u *domain.User) { u.RefreshToken = "" })
}

func (s *stubUserStore) UpdateAccount(_ context.Context, id string, in ports.AccountUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if in.Email != nil {
		for otherID, other := range s.byID {
			if otherID != id && other.Email == *in.Email {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = *in.Email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	return u.Public(), nil
}

func (s *stubUserStore) UpdateChannel(_ context.Context, id string, in ports.ChannelUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if in.Description != nil {
		u.ChannelDescription = *in.Description
	}
	if in.Tags != nil {
		u.ChannelTags = *in.Tags
	}
	if in.SocialLinks != nil {
		u.SocialLinks = *in.SocialLinks
	}
	return u.Public(), nil
}

func (s *stubUserStore) UpdateNotificationSettings(_ context.Context, id string, in ports.NotificationUpdate) (*domain.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if in.EmailNotification != nil {
		u.NotificationSettings.EmailNotification = *in.EmailNotification
	}
	if in.SubscriptionActivity != nil {
		u.NotificationSettings.SubscriptionActivity = *in.SubscriptionActivity
	}
	if in.CommentActivity != nil {
		u.NotificationSettings.CommentActivity = *in.CommentActivity
	}
	settings := u.NotificationSettings
	return &settings, nil
}

func (s *stubUserStore) mutate(id string, fn func(u *domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}

// storedRefreshToken reads the persisted token directly.
func (s *stubUserStore) storedRefreshToken(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		return u.RefreshToken
	}
	return ""
}

// ---------------------------------------------------------------------------
// Throttle and audit stubs
// ---------------------------------------------------------------------------

type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
	allowErr error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Allow(_ context.Context, id string) (bool, error) {
	if t.allowErr != nil {
		return false, t.allowErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[id] < t.max, nil
}

func (t *stubThrottle) Fail(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[id]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, id)
	return nil
}

func (t *stubThrottle) count(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[id]
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) types() []domain.AuthEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

func (s *stubUserStore) AddToWatchHistory(_ context.Context, id, videoID string) error {
	return s.mutate(id, func(u *domain.User) {
		for _, h := range u.WatchHistory {
			if h == videoID {
				return
			}
		}
		u.WatchHistory = append(u.WatchHistory, videoID)
	})
}

// ---------------------------------------------------------------------------
// Video stub
// ---------------------------------------------------------------------------

type stubVideoStore struct {
	mu     sync.Mutex
	byID   map[string]*domain.Video
	nextID int

	lastFilter ports.ListVideosFilter
	sharesErr  error
}

func newStubVideoStore() *stubVideoStore {
	return &stubVideoStore{byID: make(map[string]*domain.Video)}
}

func (s *stubVideoStore) Create(_ context.Context, v *domain.Video) (*domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	clone := *v
	clone.ID = fmt.Sprintf("%024x", 0x1000+s.nextID)
	s.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *stubVideoStore) FindByID(_ context.Context, id string) (*domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	clone := *v
	return &clone, nil
}

func (s *stubVideoStore) IncrementViews(ctx context.Context, id string) (*domain.Video, error) {
	s.mu.Lock()
	v, ok := s.byID[id]
	if ok {
		v.Views++
	}
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *stubVideoStore) IncrementShares(_ context.Context, id string) error {
	if s.sharesErr != nil {
		return s.sharesErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return domain.ErrVideoNotFound
	}
	v.Shares++
	return nil
}

func (s *stubVideoStore) List(_ context.Context, filter ports.ListVideosFilter) ([]*domain.Video, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	var out []*domain.Video
	for _, v := range s.byID {
		if filter.OwnerID != "" && v.Owner.ID != filter.OwnerID {
			continue
		}
		if !filter.IncludeUnpublished && !v.IsPublished {
			continue
		}
		clone := *v
		out = append(out, &clone)
	}
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *stubVideoStore) owned(id, ownerID string) (*domain.Video, error) {
	v, ok := s.byID[id]
	if !ok || v.Owner.ID != ownerID {
		return nil, domain.ErrVideoNotOwned
	}
	return v, nil
}

func (s *stubVideoStore) Update(_ context.Context, id, ownerID string, in ports.VideoUpdate) (*domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		v.Title = *in.Title
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.Category != nil {
		v.Category = *in.Category
	}
	if in.Tags != nil {
		v.Tags = *in.Tags
	}
	if in.IsPublished != nil {
		v.IsPublished = *in.IsPublished
	}
	if in.Thumbnail != nil {
		v.Thumbnail = *in.Thumbnail
	}
	clone := *v
	return &clone, nil
}

func (s *stubVideoStore) TogglePublish(_ context.Context, id, ownerID string) (*domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	v.IsPublished = !v.IsPublished
	clone := *v
	return &clone, nil
}

func (s *stubVideoStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.owned(id, ownerID); err != nil {
		return err
	}
	delete(s.byID, id)
	return nil
}
