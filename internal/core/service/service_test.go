package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vicentemv/user-management-api/internal/core/audit"
	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

// memUserRepo is an in-memory ports.UserRepository used across the service
// tests. IDs are assigned sequentially; uniqueness of email and username is
// enforced the way the mongo indexes would.
type memUserRepo struct {
	users map[string]*domain.User
	order []string
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("u%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	r.order = append(r.order, created.ID)
	return created, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if !strings.HasPrefix(id, "u") {
		return nil, domain.ErrInvalidID
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByResetTokenHash(_ context.Context, tokenHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ResetTokenHash == tokenHash {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, id string, fields map[string]any) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case audit.FieldName:
			u.Name = v.(string)
		case audit.FieldSurname:
			u.Surname = v.(string)
		case audit.FieldEmail:
			u.Email = v.(string)
		case audit.FieldUsername:
			u.Username = v.(string)
		case audit.FieldRole:
			u.Role = v.(string)
		case audit.FieldPasswordHash:
			u.PasswordHash = v.(string)
		case audit.FieldResetTokenHash:
			u.ResetTokenHash = v.(string)
		case audit.FieldResetTokenExpiry:
			u.ResetTokenExpiry = v.(time.Time)
		}
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memUserRepo) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	// Newest first, like the mongo repository.
	out := make([]*domain.User, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, cloneUser(r.users[r.order[i]]))
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, int64(len(r.order)), nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], int64(len(r.order)), nil
}

// memAuditRepo is an in-memory ports.AuditRepository. Entries append in
// write order; listings return newest first.
type memAuditRepo struct {
	entries []*domain.AuditEntry
	failing bool
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Insert(_ context.Context, entry *domain.AuditEntry) error {
	if r.failing {
		return fmt.Errorf("audit store unavailable")
	}
	clone := *entry
	clone.ID = fmt.Sprintf("a%d", len(r.entries)+1)
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *memAuditRepo) ListAll(_ context.Context) ([]*domain.AuditEntry, error) {
	return r.reversed(r.entries), nil
}

func (r *memAuditRepo) ListBySubject(_ context.Context, subjectID string) ([]*domain.AuditEntry, error) {
	if !strings.HasPrefix(subjectID, "u") {
		return nil, domain.ErrInvalidID
	}
	var matched []*domain.AuditEntry
	for _, e := range r.entries {
		if e.SubjectID == subjectID {
			matched = append(matched, e)
		}
	}
	return r.reversed(matched), nil
}

func (r *memAuditRepo) reversed(in []*domain.AuditEntry) []*domain.AuditEntry {
	out := make([]*domain.AuditEntry, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		clone := *in[i]
		out = append(out, &clone)
	}
	return out
}

// bySubject counts entries for one subject, by kind.
func (r *memAuditRepo) bySubject(subjectID string, kind domain.ChangeKind) []*domain.AuditEntry {
	var matched []*domain.AuditEntry
	for _, e := range r.entries {
		if e.SubjectID == subjectID && e.Kind == kind {
			matched = append(matched, e)
		}
	}
	return matched
}

type stubMailer struct {
	sent []ports.Mail
}

func (m *stubMailer) Enqueue(mail ports.Mail) {
	m.sent = append(m.sent, mail)
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l *stubLimiter) Allow(context.Context, string, string) (bool, error) {
	return l.allow, l.err
}

// testEnv wires real recorder + recording repository over the in-memory
// stores, mirroring the production composition in the router.
type testEnv struct {
	users  *memUserRepo
	audits *memAuditRepo
	repo   *audit.RecordingRepository
	mail   *stubMailer
	user   *UserService
	admin  *AdminService
	query  *AuditQueryService
}

func newTestEnv() *testEnv {
	users := newMemUserRepo()
	audits := newMemAuditRepo()
	recorder := audit.NewRecorder(audits, zerolog.Nop())
	repo := audit.NewRecordingRepository(users, recorder)
	mail := &stubMailer{}

	return &testEnv{
		users:  users,
		audits: audits,
		repo:   repo,
		mail:   mail,
		user:   NewUserService(repo, mail, &stubLimiter{allow: true}, "secret", 0, zerolog.Nop()),
		admin:  NewAdminService(repo, zerolog.Nop()),
		query:  NewAuditQueryService(audits, zerolog.Nop()),
	}
}
