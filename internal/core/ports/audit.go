package ports

import (
	"context"

	"github.com/primeshop/account-service/internal/core/domain"
)

// AuditSink accepts security events for asynchronous recording. Implementations
// must never block the caller beyond a bounded buffer.
type AuditSink interface {
	Enqueue(event domain.SecurityEvent)
}

// AuditService persists a single security event.
type AuditService interface {
	Record(ctx context.Context, event domain.SecurityEvent) error
}

// AuditRepository is the storage adapter for the audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
}
