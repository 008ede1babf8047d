package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// AuthService signs admins in and manages their passwords.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                 ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It never touches cookies; the handler turns an AuthResult into one.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	limiter   *auth.LoginLimiter
	logger    *slog.Logger
}

// NewAuthService wires the auth flow. tokens may be nil when no JWT secret is
// configured; sign-in then always fails while CreateAdmin and ChangePassword
// keep working for the CLI.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	limiter *auth.LoginLimiter,
	logger *slog.Logger,
) *AuthService {
	if limiter == nil {
		limiter = auth.NewLoginLimiter(0, 0)
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		limiter:   limiter,
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user with the session token.
type AuthResult struct {
	User  *model.User
	Token string
}

var errBadCredentials = apperror.Unauthorized("invalid email or password")

// Login checks an email/password pair. Unknown emails and wrong passwords get
// the same error; repeated failures lock the email for a while.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}
	if !s.limiter.Allowed(email) {
		s.logger.Warn("login locked", slog.String("email", email))
		return nil, apperror.RateLimited("too many failed sign-in attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		s.fail(email)
		return nil, errBadCredentials
	case err != nil:
		return nil, err
	}

	if user.PasswordHash == "" {
		s.fail(email)
		return nil, errBadCredentials
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.fail(email)
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("verifying password: %w", err)
	}

	s.limiter.Reset(email)
	return s.issue(user, "password")
}

// LoginGitHub signs in the admin whose email matches the GitHub account.
// GitHub never creates accounts.
func (s *AuthService) LoginGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil || strings.TrimSpace(gh.Email) == "" {
		return nil, apperror.Forbidden("GitHub account has no verified email")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(gh.Email)))
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		s.logger.Warn("GitHub sign-in refused",
			slog.String("login", gh.Login),
			slog.String("email", gh.Email),
		)
		return nil, apperror.Forbidden("this GitHub account is not an admin")
	case err != nil:
		return nil, err
	}

	return s.issue(user, "github")
}

func (s *AuthService) issue(user *model.User, method string) (*AuthResult, error) {
	if user.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}
	if s.tokens == nil {
		return nil, apperror.Unauthorized("sign-in is disabled: no JWT secret configured")
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("admin signed in",
		slog.String("userID", user.ID),
		slog.String("method", method),
	)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) fail(email string) {
	n := s.limiter.Fail(email)
	s.logger.Info("login failed", slog.String("email", email), slog.Int("failures", n))
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("not signed in")
	}
	return s.users.GetByID(ctx, userID)
}

// ChangePassword replaces the user's password after checking the current one.
// A wrong current password is a validation error, not an auth failure: the
// caller is already signed in.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" {
		return apperror.ValidationFailed("currentPassword", "current password is required")
	}
	if err := validatePassword("newPassword", next); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) || user.PasswordHash == "" {
			return apperror.ValidationFailed("currentPassword", "current password is incorrect")
		}
		return fmt.Errorf("verifying password: %w", err)
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password changed", slog.String("userID", user.ID))
	return nil
}

// CreateAdmin creates the admin account or resets the existing one with the
// same email.
func (s *AuthService) CreateAdmin(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("saving admin %s: %w", email, err)
	}

	s.logger.Info("admin saved", slog.String("userID", user.ID), slog.String("email", email))
	return user, nil
}

func validatePassword(field, pw string) error {
	switch {
	case len(pw) < auth.MinPasswordLength:
		return apperror.ValidationFailed(field,
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	case len(pw) > auth.MaxPasswordLength:
		return apperror.ValidationFailed(field,
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordLength))
	}
	return nil
}
