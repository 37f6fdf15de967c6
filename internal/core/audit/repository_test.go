package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

// fakeUserRepo holds a single account, enough to drive the recording
// decorator through its three mutation paths.
type fakeUserRepo struct {
	user      *domain.User
	updateErr error
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	created := *user
	created.ID = "u1"
	r.user = &created
	return &created, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.user
	return &clone, nil
}

func (r *fakeUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByResetTokenHash(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id string, fields map[string]any) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if r.user == nil || r.user.ID != id {
		return nil, domain.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case FieldName:
			r.user.Name = v.(string)
		case FieldEmail:
			r.user.Email = v.(string)
		case FieldRole:
			r.user.Role = v.(string)
		case FieldPasswordHash:
			r.user.PasswordHash = v.(string)
		case FieldResetTokenHash:
			r.user.ResetTokenHash = v.(string)
		}
	}
	clone := *r.user
	return &clone, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if r.user == nil || r.user.ID != id {
		return domain.ErrUserNotFound
	}
	r.user = nil
	return nil
}

func (r *fakeUserRepo) List(context.Context, int, int) ([]*domain.User, int64, error) {
	if r.user == nil {
		return nil, 0, nil
	}
	clone := *r.user
	return []*domain.User{&clone}, 1, nil
}

func newRecordingFixture() (*fakeUserRepo, *captureAuditRepo, *RecordingRepository) {
	users := &fakeUserRepo{}
	audits := &captureAuditRepo{}
	repo := NewRecordingRepository(users, NewRecorder(audits, zerolog.Nop()))
	return users, audits, repo
}

func TestRecordingRepository_CreateDefaultsActorToSubject(t *testing.T) {
	_, audits, repo := newRecordingFixture()

	created, err := repo.Create(context.Background(), testSubject())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(audits.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(audits.entries))
	}
	e := audits.entries[0]
	if e.Kind != domain.ChangeCreate || e.SubjectID != created.ID {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.ActorID != created.ID {
		t.Fatalf("expected self-attribution without a context actor, got %s", e.ActorID)
	}
}

func TestRecordingRepository_ContextActorWins(t *testing.T) {
	_, audits, repo := newRecordingFixture()

	ctx := WithActor(context.Background(), domain.Actor{ID: "admin9", Username: "root", Email: "root@x.com"})
	if _, err := repo.Create(ctx, testSubject()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	e := audits.entries[0]
	if e.ActorID != "admin9" || e.ActorUsername != "root" {
		t.Fatalf("expected context actor attribution, got %+v", e)
	}
}

func TestRecordingRepository_UpdateDiffsAgainstPriorState(t *testing.T) {
	_, audits, repo := newRecordingFixture()
	if _, err := repo.Create(context.Background(), testSubject()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err := repo.Update(context.Background(), "u1", map[string]any{
		FieldName:         "Johnny",
		FieldPasswordHash: "hash2",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if len(audits.entries) != 2 {
		t.Fatalf("expected create + update entries, got %d", len(audits.entries))
	}
	changes := audits.entries[1].Changes
	name, ok := changes["name"].(domain.FieldChange)
	if !ok || name.From != "John" || name.To != "Johnny" {
		t.Fatalf("expected name from/to pair, got %+v", changes["name"])
	}
	if changes["password"] != "updated" {
		t.Fatalf("expected masked password marker, got %+v", changes)
	}
	if _, ok := changes[FieldPasswordHash]; ok {
		t.Fatalf("raw hash key must not appear in the payload")
	}
}

func TestRecordingRepository_ResetTokenMarkers(t *testing.T) {
	_, audits, repo := newRecordingFixture()
	if _, err := repo.Create(context.Background(), testSubject()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := repo.Update(context.Background(), "u1", map[string]any{FieldResetTokenHash: "abc123"}); err != nil {
		t.Fatalf("issue update returned error: %v", err)
	}
	if _, err := repo.Update(context.Background(), "u1", map[string]any{FieldResetTokenHash: ""}); err != nil {
		t.Fatalf("clear update returned error: %v", err)
	}

	if audits.entries[1].Changes["reset_token"] != "issued" {
		t.Fatalf("expected issued marker, got %+v", audits.entries[1].Changes)
	}
	if audits.entries[2].Changes["reset_token"] != "cleared" {
		t.Fatalf("expected cleared marker, got %+v", audits.entries[2].Changes)
	}
}

func TestRecordingRepository_FailedMutationWritesNothing(t *testing.T) {
	users, audits, repo := newRecordingFixture()
	if _, err := repo.Create(context.Background(), testSubject()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	before := len(audits.entries)

	users.updateErr = errors.New("write conflict")
	if _, err := repo.Update(context.Background(), "u1", map[string]any{FieldName: "X"}); err == nil {
		t.Fatalf("expected update error")
	}
	if err := repo.Delete(context.Background(), "u404"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if len(audits.entries) != before {
		t.Fatalf("failed mutations must not write entries")
	}
}

func TestRecordingRepository_DeleteSnapshotsPriorState(t *testing.T) {
	users, audits, repo := newRecordingFixture()
	if _, err := repo.Create(context.Background(), testSubject()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := repo.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if users.user != nil {
		t.Fatalf("account should be gone")
	}

	e := audits.entries[1]
	if e.Kind != domain.ChangeDelete || e.Changes["email"] != "john@x.com" {
		t.Fatalf("expected pre-deletion snapshot, got %+v", e)
	}
}

func TestActorFrom(t *testing.T) {
	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatalf("bare context must not yield an actor")
	}

	ctx := WithActor(context.Background(), domain.Actor{})
	if _, ok := ActorFrom(ctx); ok {
		t.Fatalf("empty actor id must be treated as unset")
	}

	ctx = WithActor(context.Background(), domain.Actor{ID: "u1", Username: "john1"})
	actor, ok := ActorFrom(ctx)
	if !ok || actor.Username != "john1" {
		t.Fatalf("expected stored actor, got %+v ok=%v", actor, ok)
	}
}
