package ports

import (
	"context"

	"github.com/tubehub/api/internal/core/domain"
)

// AuditRepository persists auth events to the auth_events collection.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event domain.AuthEvent) error
}

// AuditRecorder accepts events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
