package domain

import "time"

// AuthEventType names a step of the session lifecycle.
type AuthEventType string

const (
	EventRegister        AuthEventType = "register"
	EventLogin           AuthEventType = "login"
	EventLoginFailed     AuthEventType = "login_failed"
	EventRefresh         AuthEventType = "refresh"
	EventRefreshReuse    AuthEventType = "refresh_reuse"
	EventLogout          AuthEventType = "logout"
	EventPasswordChanged AuthEventType = "password_changed"
	EventSessionRevoked  AuthEventType = "session_revoked"
)

// AuthEvent is one entry of the auth audit trail. UserID is empty when the
// actor could not be resolved (e.g. a failed login for an unknown account);
// Identifier then carries the normalized username or email.
type AuthEvent struct {
	Type       AuthEventType
	UserID     string
	Identifier string
	Reason     string
	OccurredAt time.Time
}

// Key returns the value used to keep events of one actor in order.
func (e AuthEvent) Key() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.Identifier
}
