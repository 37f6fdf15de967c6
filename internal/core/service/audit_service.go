package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

// AuditQueryService serves audit history to admins. Display fields come
// from the denormalized actor columns on each entry, never from joining
// the users collection, so entries stay resolvable after deletions.
type AuditQueryService struct {
	audits ports.AuditRepository
	log    zerolog.Logger
}

func NewAuditQueryService(audits ports.AuditRepository, log zerolog.Logger) *AuditQueryService {
	return &AuditQueryService{audits: audits, log: log}
}

// ListAll returns the complete trail, newest first.
func (s *AuditQueryService) ListAll(ctx context.Context, callerRole string) ([]ports.AuditView, error) {
	if callerRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	entries, err := s.audits.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toViews(entries), nil
}

// ListForSubject returns the trail for one subject, newest first. A
// well-formed id with no entries yields an empty slice; a malformed id is a
// validation error (surfaced by the repository as ErrInvalidID).
func (s *AuditQueryService) ListForSubject(ctx context.Context, callerRole, subjectID string) ([]ports.AuditView, error) {
	if callerRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	entries, err := s.audits.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return toViews(entries), nil
}

func toViews(entries []*domain.AuditEntry) []ports.AuditView {
	views := make([]ports.AuditView, 0, len(entries))
	for _, e := range entries {
		views = append(views, ports.AuditView{
			ID:             e.ID,
			SubjectID:      e.SubjectID,
			ChangedBy:      e.ActorID,
			ChangedByName:  e.ActorUsername,
			ChangedByEmail: e.ActorEmail,
			ChangeType:     string(e.Kind),
			Changes:        e.Changes,
			CreatedAt:      e.CreatedAt,
		})
	}
	return views
}
