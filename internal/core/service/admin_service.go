package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vicentemv/user-management-api/internal/api/metrics"
	"github.com/vicentemv/user-management-api/internal/core/audit"
	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// AdminService implements the privileged account operations. Every mutation
// runs with the calling admin attributed as actor via the audit context, so
// the recording repository writes entries with actor != subject.
type AdminService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewAdminService(repo ports.UserRepository, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, page, limit int) (*ports.UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// CreateAdmin creates a new account with the admin role, attributed to the
// calling admin.
func (s *AdminService) CreateAdmin(ctx context.Context, actorID string, input ports.RegisterInput) (*domain.User, error) {
	ctx, err := s.withActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	user, err := createUser(ctx, s.repo, input, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(domain.RoleAdmin).Inc()
	s.log.Info().Str("user_id", user.ID).Str("actor_id", actorID).Msg("admin account created")
	return user, nil
}

// UpdateRole sets the target's role. Role changes are security-relevant and
// always audited; setting the role a user already has is a no-op and writes
// nothing.
func (s *AdminService) UpdateRole(ctx context.Context, actorID, targetID, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	ctx, err = s.withActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, targetID, map[string]any{audit.FieldRole: role})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", targetID).
		Str("actor_id", actorID).
		Str("from", target.Role).
		Str("to", role).
		Msg("role changed")
	return updated, nil
}

// DeleteUser removes the target account on behalf of the calling admin.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	ctx, err := s.withActor(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("admin").Inc()
	s.log.Info().Str("user_id", targetID).Str("actor_id", actorID).Msg("account deleted by admin")
	return nil
}

func (s *AdminService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Role == domain.RoleAdmin, nil
}

// withActor resolves the calling admin and stamps it into the context so
// the recording repository attributes the mutation correctly.
func (s *AdminService) withActor(ctx context.Context, actorID string) (context.Context, error) {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return audit.WithActor(ctx, domain.ActorFromUser(actor)), nil
}
