package ports

import (
	"context"
	"time"
)

// AuditView is the transport-facing projection of one audit entry, with the
// actor resolved to the display fields denormalized onto the entry at write
// time.
type AuditView struct {
	ID             string         `json:"id"`
	SubjectID      string         `json:"subjectId"`
	ChangedBy      string         `json:"changedBy"`
	ChangedByName  string         `json:"changedByUsername,omitempty"`
	ChangedByEmail string         `json:"changedByEmail,omitempty"`
	ChangeType     string         `json:"changeType"`
	Changes        map[string]any `json:"changes"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// AuditQueryService exposes the audit history to admin-capable callers.
// The caller's role is passed explicitly so the authorization decision is
// enforced in the core, not only at the transport layer.
type AuditQueryService interface {
	ListAll(ctx context.Context, callerRole string) ([]AuditView, error)
	ListForSubject(ctx context.Context, callerRole, subjectID string) ([]AuditView, error)
}
