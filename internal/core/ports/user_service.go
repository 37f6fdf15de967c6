package ports

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

// RegisterInput carries the fields required to create a new account.
type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Username string
	Password string
}

// UpdateProfileInput carries the self-service profile fields. Empty strings
// mean "leave unchanged".
type UpdateProfileInput struct {
	Name     string
	Surname  string
	Email    string
	Username string
}

// UserService defines the self-service account operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID, password string) error
	// ForgotPassword issues a reset token and mails it to the account.
	// It succeeds silently for unknown emails so the endpoint cannot be
	// used to probe which addresses are registered.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
