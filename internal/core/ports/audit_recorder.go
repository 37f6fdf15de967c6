package ports

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

// AuditRecorder appends one entry per account mutation. Implementations must
// not fail the primary mutation when the audit write fails; failures are
// surfaced out of band (logs, metrics) for operational reconciliation.
type AuditRecorder interface {
	RecordCreate(ctx context.Context, subject *domain.User, actor domain.Actor)
	RecordUpdate(ctx context.Context, subject *domain.User, actor domain.Actor, changes map[string]any)
	RecordDelete(ctx context.Context, subject *domain.User, actor domain.Actor)
}
