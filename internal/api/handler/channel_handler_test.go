package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

type stubAccountService struct {
	updateAccountFn func(ctx context.Context, userID string, in ports.AccountUpdate) (*domain.User, error)
	getChannelFn    func(ctx context.Context, username string) (*domain.Channel, error)
	updateChannelFn func(ctx context.Context, userID string, in ports.ChannelUpdate) (*domain.User, error)
	updateNotifsFn  func(ctx context.Context, userID string, in ports.NotificationUpdate) (*domain.NotificationSettings, error)
}

func (s *stubAccountService) UpdateAccount(ctx context.Context, userID string, in ports.AccountUpdate) (*domain.User, error) {
	return s.updateAccountFn(ctx, userID, in)
}

func (s *stubAccountService) GetChannel(ctx context.Context, username string) (*domain.Channel, error) {
	return s.getChannelFn(ctx, username)
}

func (s *stubAccountService) UpdateChannel(ctx context.Context, userID string, in ports.ChannelUpdate) (*domain.User, error) {
	return s.updateChannelFn(ctx, userID, in)
}

func (s *stubAccountService) UpdateNotificationSettings(ctx context.Context, userID string, in ports.NotificationUpdate) (*domain.NotificationSettings, error) {
	return s.updateNotifsFn(ctx, userID, in)
}

func channelStub() *stubAccountService {
	return &stubAccountService{
		getChannelFn: func(_ context.Context, username string) (*domain.Channel, error) {
			if username != "alice" {
				return nil, domain.ErrChannelNotFound
			}
			return &domain.Channel{ID: "u1", Username: "alice", FullName: "Alice"}, nil
		},
	}
}

func TestChannelHandler_GetChannel(t *testing.T) {
	e := newTestEcho()
	h := NewChannelHandler(channelStub())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/channels/alice", nil), rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if err := h.GetChannel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	_, data := decodeEnvelope(t, rec)
	if data["username"] != "alice" {
		t.Fatalf("unexpected channel payload: %+v", data)
	}
	if _, ok := data["email"]; ok {
		t.Fatalf("channel view must not expose email")
	}
}

func TestChannelHandler_GetChannel_NotFound(t *testing.T) {
	e := newTestEcho()
	h := NewChannelHandler(channelStub())

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("username")
	c.SetParamValues("ghost")
	if err := h.GetChannel(c); !errors.Is(err, domain.ErrChannelNotFound) {
		t.Fatalf("expected channel not found, got %v", err)
	}
}

func TestChannelHandler_ShareLink(t *testing.T) {
	e := newTestEcho()
	h := NewChannelHandler(channelStub())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/alice/share", nil)
	req.Host = "tube.example.com"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if err := h.ShareLink(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	env, data := decodeEnvelope(t, rec)
	if env.Message != "Channel share generated successfully" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
	if data["shareLink"] != "http://tube.example.com/api/v1/channels/alice" {
		t.Fatalf("unexpected share link: %v", data["shareLink"])
	}
}

func TestChannelHandler_UpdateNotificationSettings(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		updateNotifsFn: func(_ context.Context, userID string, in ports.NotificationUpdate) (*domain.NotificationSettings, error) {
			if userID != "u1" || in.EmailNotification == nil || *in.EmailNotification || in.CommentActivity != nil {
				t.Fatalf("unexpected update: %s %+v", userID, in)
			}
			return &domain.NotificationSettings{SubscriptionActivity: true, CommentActivity: true}, nil
		},
	}
	h := NewChannelHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{"emailNotification":false}`), rec)
	c.Set("user", &domain.User{ID: "u1"})
	if err := h.UpdateNotificationSettings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	_, data := decodeEnvelope(t, rec)
	if data["emailNotification"] != false || data["commentActivity"] != true {
		t.Fatalf("unexpected settings: %+v", data)
	}
}

func TestChannelHandler_UpdateChannel(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		updateChannelFn: func(_ context.Context, userID string, in ports.ChannelUpdate) (*domain.User, error) {
			if in.Description == nil || *in.Description != "hi" || in.Tags == nil || len(*in.Tags) != 2 || in.SocialLinks != nil {
				t.Fatalf("unexpected update: %+v", in)
			}
			return &domain.User{ID: userID, ChannelDescription: "hi", ChannelTags: *in.Tags}, nil
		},
	}
	h := NewChannelHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{"channelDescription":"hi","channelTags":["a","b"]}`), rec)
	c.Set("user", &domain.User{ID: "u1"})
	if err := h.UpdateChannel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_CurrentUserAndUpdate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		updateAccountFn: func(_ context.Context, userID string, in ports.AccountUpdate) (*domain.User, error) {
			if in.FullName == nil || *in.FullName != "New Name" || in.Email != nil {
				t.Fatalf("unexpected update: %+v", in)
			}
			return &domain.User{ID: userID, FullName: *in.FullName}, nil
		},
	}
	h := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("user", &domain.User{ID: "u1", Username: "alice"})
	if err := h.CurrentUser(c); err != nil {
		t.Fatalf("current user: %v", err)
	}
	if _, data := decodeEnvelope(t, rec); data["username"] != "alice" {
		t.Fatalf("unexpected user: %+v", data)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPut, "/", `{"fullName":"New Name"}`), rec)
	c.Set("user", &domain.User{ID: "u1"})
	if err := h.UpdateAccount(c); err != nil {
		t.Fatalf("update account: %v", err)
	}
	if env, _ := decodeEnvelope(t, rec); env.Message != "Account details updated successfully" {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	c = e.NewContext(jsonRequest(http.MethodPut, "/", `{"email":"bad"}`), httptest.NewRecorder())
	c.Set("user", &domain.User{ID: "u1"})
	if err := h.UpdateAccount(c); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadinessHandler(t *testing.T) {
	e := newTestEcho()
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	h := NewReadinessHandler(map[string]PingFunc{"mongodb": ok, "redis": ok})
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h = NewReadinessHandler(map[string]PingFunc{"mongodb": ok, "redis": down})
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
