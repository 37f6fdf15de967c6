package ports

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
//
// Update takes a partial set of bson-level fields to apply; implementations
// return the document as it stands after the update. Delete removes the
// document entirely.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of users and the total count.
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
}
