package ports

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AdminService defines the privileged account operations. The acting admin's
// id is taken from the request context; implementations record it as the
// actor on every audit entry they cause.
type AdminService interface {
	ListUsers(ctx context.Context, page, limit int) (*UserPage, error)
	CreateAdmin(ctx context.Context, actorID string, input RegisterInput) (*domain.User, error)
	UpdateRole(ctx context.Context, actorID, targetID, role string) (*domain.User, error)
	DeleteUser(ctx context.Context, actorID, targetID string) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
}
