package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vicentemv/user-management-api/internal/api/metrics"
	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

// Recorder appends audit entries to the audit store. The append is
// best-effort relative to the primary mutation: by the time the recorder
// runs, the account write has already committed, so a failed append is
// logged and counted instead of propagated.
type Recorder struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewRecorder(repo ports.AuditRepository, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// RecordCreate writes a create entry whose payload snapshots the subject's
// public fields at creation time.
func (r *Recorder) RecordCreate(ctx context.Context, subject *domain.User, actor domain.Actor) {
	r.append(ctx, subject.ID, actor, domain.ChangeCreate, subject.PublicSnapshot())
}

// RecordUpdate writes an update entry. changes holds per-field from/to
// pairs (credential fields arrive pre-masked by the caller).
func (r *Recorder) RecordUpdate(ctx context.Context, subject *domain.User, actor domain.Actor, changes map[string]any) {
	r.append(ctx, subject.ID, actor, domain.ChangeUpdate, changes)
}

// RecordDelete writes a delete entry whose payload snapshots the subject as
// it stood immediately before removal.
func (r *Recorder) RecordDelete(ctx context.Context, subject *domain.User, actor domain.Actor) {
	r.append(ctx, subject.ID, actor, domain.ChangeDelete, subject.PublicSnapshot())
}

func (r *Recorder) append(ctx context.Context, subjectID string, actor domain.Actor, kind domain.ChangeKind, changes map[string]any) {
	if len(changes) == 0 {
		r.log.Warn().
			Err(domain.ErrEmptyAuditPayload).
			Str("subject_id", subjectID).
			Str("kind", string(kind)).
			Msg("refusing to write audit entry")
		metrics.AuditWriteFailuresTotal.Inc()
		return
	}

	entry := &domain.AuditEntry{
		SubjectID:     subjectID,
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		ActorEmail:    actor.Email,
		Kind:          kind,
		Changes:       changes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.log.Error().Err(err).
			Str("subject_id", subjectID).
			Str("actor_id", actor.ID).
			Str("kind", string(kind)).
			Msg("audit entry write failed")
		metrics.AuditWriteFailuresTotal.Inc()
		return
	}

	metrics.AuditEntriesTotal.WithLabelValues(string(kind)).Inc()
}
