package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vicentemv/user-management-api/internal/api/metrics"
	"github.com/vicentemv/user-management-api/internal/core/audit"
	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

// RateLimiter abstracts the attempt throttle (Redis).
type RateLimiter interface {
	Allow(ctx context.Context, scope, key string) (bool, error)
}

// UserService implements the self-service account operations. All mutations
// go through the recording repository, so every path is audited without
// explicit recorder calls here.
type UserService struct {
	repo      ports.UserRepository
	mail      ports.MailEnqueuer
	limiter   RateLimiter
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	mail ports.MailEnqueuer,
	limiter RateLimiter,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &UserService{
		repo:      repo,
		mail:      mail,
		limiter:   limiter,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register creates a new ordinary account and returns it with a signed
// token. Conflict checks run before any write so a rejected registration
// leaves no trace in the audit trail.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, string, error) {
	user, err := createUser(ctx, s.repo, input, domain.RoleUser)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	metrics.RegistrationsTotal.WithLabelValues(domain.RoleUser).Inc()
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !s.allow(ctx, "login", email) {
		metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
		return "", nil, domain.ErrRateLimited
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same signal as a wrong password, so the endpoint cannot be
			// used to probe which addresses are registered.
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile applies the non-empty input fields. Uniqueness of email and
// username is re-checked against other accounts before the write.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ports.UpdateProfileInput) (*domain.User, error) {
	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != "" && input.Name != current.Name {
		fields[audit.FieldName] = input.Name
	}
	if input.Surname != "" && input.Surname != current.Surname {
		fields[audit.FieldSurname] = input.Surname
	}
	if input.Email != "" && input.Email != current.Email {
		if other, err := s.repo.FindByEmail(ctx, input.Email); err == nil && other.ID != userID {
			return nil, domain.ErrEmailTaken
		}
		fields[audit.FieldEmail] = input.Email
	}
	if input.Username != "" && input.Username != current.Username {
		if other, err := s.repo.FindByUsername(ctx, input.Username); err == nil && other.ID != userID {
			return nil, domain.ErrUsernameTaken
		}
		fields[audit.FieldUsername] = input.Username
	}

	if len(fields) == 0 {
		return current, nil
	}
	return s.repo.Update(ctx, userID, fields)
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if oldPassword == newPassword {
		return domain.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, userID, map[string]any{audit.FieldPasswordHash: string(hash)})
	return err
}

// DeleteAccount removes the caller's own account after confirming the
// password.
func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.ErrInvalidCredentials
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("self").Inc()
	s.log.Info().Str("user_id", userID).Msg("account self-deleted")
	return nil
}

// ForgotPassword issues a single-use reset token valid for one hour and
// mails it to the account. Unknown emails succeed silently.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if !s.allow(ctx, "reset", email) {
		return domain.ErrRateLimited
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, user.ID, map[string]any{
		audit.FieldResetTokenHash:   hashResetToken(token),
		audit.FieldResetTokenExpiry: time.Now().UTC().Add(resetTokenTTL),
	})
	if err != nil {
		return err
	}

	s.mail.Enqueue(ports.Mail{
		To:      user.Email,
		Subject: "Password reset",
		Body:    fmt.Sprintf("Hello %s,\n\nUse this token to reset your password within the next hour: %s\n", user.Name, token),
	})
	return nil
}

// ResetPassword consumes a reset token issued by ForgotPassword. The token
// is single-use: the stored hash is cleared in the same update that sets
// the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || len(newPassword) < minPasswordLength {
		return domain.ErrResetTokenInvalid
	}

	user, err := s.repo.FindByResetTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}
	if user.ResetTokenExpiry.Before(time.Now().UTC()) {
		return domain.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, user.ID, map[string]any{
		audit.FieldPasswordHash:     string(hash),
		audit.FieldResetTokenHash:   "",
		audit.FieldResetTokenExpiry: time.Time{},
	})
	return err
}

// createUser validates input, hashes the credential, and persists the new
// account with the given role. Shared by Register and the admin service.
func createUser(ctx context.Context, repo ports.UserRepository, input ports.RegisterInput, role string) (*domain.User, error) {
	if input.Name == "" || input.Surname == "" || input.Email == "" || input.Username == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	}
	if _, err := repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return repo.Create(ctx, &domain.User{
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *UserService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// allow consults the rate limiter, failing open when the limiter itself is
// unreachable.
func (s *UserService) allow(ctx context.Context, scope, key string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(ctx, scope, key)
	if err != nil {
		s.log.Warn().Err(err).Str("scope", scope).Msg("rate limit check failed, allowing request")
		return true
	}
	return ok
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
