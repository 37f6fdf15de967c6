package ports

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

// AuditRepository defines persistence for the append-only audit trail.
// Entries are immutable: there is deliberately no update or delete here.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	// ListAll returns every entry, newest first.
	ListAll(ctx context.Context) ([]*domain.AuditEntry, error)
	// ListBySubject returns entries whose subject matches subjectID, newest
	// first. A subject with no entries yields an empty slice, not an error.
	ListBySubject(ctx context.Context, subjectID string) ([]*domain.AuditEntry, error)
}
