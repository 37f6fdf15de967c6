package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrUsernameTaken = errors.New("username already taken")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrInvalidID = errors.New("invalid identifier")
var ErrForbidden = errors.New("access forbidden")
var ErrSamePassword = errors.New("new password must differ from the old one")
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")
var ErrRateLimited = errors.New("too many attempts")

// ValidRole reports whether role is one of the two enumerated values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User models one registered account.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	ResetTokenHash   string    `json:"-"`
	ResetTokenExpiry time.Time `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PublicSnapshot returns the non-credential fields of the user. Audit
// payloads denormalize display fields through it so historical entries stay
// readable after the account changes or is deleted.
func (u *User) PublicSnapshot() map[string]any {
	return map[string]any{
		"name":     u.Name,
		"surname":  u.Surname,
		"email":    u.Email,
		"username": u.Username,
		"role":     u.Role,
	}
}
