package audit

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

// Field names accepted by UserRepository.Update. The recording repository
// keys its change-set diffing off these.
const (
	FieldName             = "name"
	FieldSurname          = "surname"
	FieldEmail            = "email"
	FieldUsername         = "username"
	FieldRole             = "role"
	FieldPasswordHash     = "password_hash"
	FieldResetTokenHash   = "reset_token_hash"
	FieldResetTokenExpiry = "reset_token_expiry"
)

// RecordingRepository wraps a UserRepository so that every successful
// create, update, and delete fires the audit recorder. Services depend on
// this type, never on the raw repository, which closes the gap class where
// a new mutation path forgets its audit call.
//
// The actor is read from the request context (WithActor); when absent the
// mutation is attributed to the subject itself, matching self-service flows.
type RecordingRepository struct {
	inner    ports.UserRepository
	recorder ports.AuditRecorder
}

var _ ports.UserRepository = (*RecordingRepository)(nil)

func NewRecordingRepository(inner ports.UserRepository, recorder ports.AuditRecorder) *RecordingRepository {
	return &RecordingRepository{inner: inner, recorder: recorder}
}

func (r *RecordingRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	created, err := r.inner.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	r.recorder.RecordCreate(ctx, created, actorOr(ctx, created))
	return created, nil
}

func (r *RecordingRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	// Snapshot the prior state first so the entry can carry from/to pairs.
	before, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := r.inner.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	r.recorder.RecordUpdate(ctx, updated, actorOr(ctx, before), changeSet(before, fields))
	return updated, nil
}

func (r *RecordingRepository) Delete(ctx context.Context, id string) error {
	// The payload must reflect pre-deletion state, so capture the snapshot
	// before the document disappears.
	before, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}

	r.recorder.RecordDelete(ctx, before, actorOr(ctx, before))
	return nil
}

func (r *RecordingRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *RecordingRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.inner.FindByEmail(ctx, email)
}

func (r *RecordingRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.inner.FindByUsername(ctx, username)
}

func (r *RecordingRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.inner.FindByResetTokenHash(ctx, tokenHash)
}

func (r *RecordingRepository) List(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	return r.inner.List(ctx, page, limit)
}

func actorOr(ctx context.Context, subject *domain.User) domain.Actor {
	if actor, ok := ActorFrom(ctx); ok {
		return actor
	}
	return domain.ActorFromUser(subject)
}

// changeSet builds the update payload from the applied fields and the
// pre-update document. Credential material never enters the trail: password
// and reset-token mutations are reduced to markers.
func changeSet(before *domain.User, fields map[string]any) map[string]any {
	changes := make(map[string]any, len(fields))
	for key, value := range fields {
		switch key {
		case FieldName:
			changes[key] = domain.FieldChange{From: before.Name, To: value}
		case FieldSurname:
			changes[key] = domain.FieldChange{From: before.Surname, To: value}
		case FieldEmail:
			changes[key] = domain.FieldChange{From: before.Email, To: value}
		case FieldUsername:
			changes[key] = domain.FieldChange{From: before.Username, To: value}
		case FieldRole:
			changes[key] = domain.FieldChange{From: before.Role, To: value}
		case FieldPasswordHash:
			changes["password"] = "updated"
		case FieldResetTokenHash:
			if s, ok := value.(string); ok && s == "" {
				changes["reset_token"] = "cleared"
			} else {
				changes["reset_token"] = "issued"
			}
		case FieldResetTokenExpiry:
			// Covered by the reset_token marker.
		}
	}
	return changes
}
