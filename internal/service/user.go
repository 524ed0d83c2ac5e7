package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"imgvault/internal/apperr"
	"imgvault/internal/auth"
	"imgvault/internal/model"
	"imgvault/internal/repository"
)

// AuthResult is a freshly authenticated session: the account plus its token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// UserService defines signup, login, and caller resolution.
type UserService interface {
	// Signup creates an account and returns it with a session token.
	Signup(ctx context.Context, email, password string) (*AuthResult, error)

	// Login verifies credentials and returns the account with a session token.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GetByID resolves a user id (from a verified token) to the account.
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) UserService {
	return &userService{users: users, tokens: tokens, logger: logger}
}

func (s *userService) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, apperr.Validation("a valid email is required")
	}
	if err := validation.Validate(password, validation.Required, validation.Length(8, 128)); err != nil {
		return nil, apperr.Validation("password must be between 8 and 128 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("an account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.users.Create(ctx, user)
	if err != nil {
		// The FindByEmail pre-check races with concurrent signups; the
		// unique index is the authority.
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("an account with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(stored.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user signed up", "user_id", stored.ID)
	return &AuthResult{User: stored, Token: token}, nil
}

// isUniqueViolation reports whether err is a Postgres unique index
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same failure shape whether the account is missing or the
			// password is wrong.
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
