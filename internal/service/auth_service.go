package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util"
)

// AuthService coordinates registration, login, reset and account management.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and issues its first token.
func (s *AuthService) Register(ctx context.Context, email, password string, isAdmin bool) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("user already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// 23505: a concurrent register inserted the same email between the
		// existence check and this insert
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, "", time.Time{}, apperrors.NewConflict("user already exists", nil)
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventUserRegistered, events.UserRegisteredPayload{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	return user, token, exp, nil
}

// Login authenticates a user. Unknown email and wrong password report the
// same error so callers cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// RequestPasswordReset stores a fresh one-time code on the account, replacing
// any pending one, and hands it to the notification pipeline for delivery.
// The code is never part of the return value.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return apperrors.NewInternalError(err)
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	user.ResetCode = &code
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventPasswordResetRequested, events.PasswordResetRequestedPayload{
		Email:     user.Email,
		ResetCode: code,
	})
	return nil
}

// CompletePasswordReset consumes a pending code: the lookup matches email and
// code together, and a hit overwrites the hash and clears the code so a second
// attempt with the same code fails.
func (s *AuthService) CompletePasswordReset(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmailAndResetCode(ctx, email, code)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewInvalidResetCode()
		}
		return apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	user.PasswordHash = hash
	user.ResetCode = nil
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventPasswordResetCompleted, events.PasswordResetCompletedPayload{Email: user.Email})
	return nil
}

// GetUser loads a single account by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// ListUsers returns all accounts.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// UserUpdateInput is the explicit allow-list for account updates. The admin
// flag is deliberately not updatable through this path.
type UserUpdateInput struct {
	Email    *string
	Password *string
}

// UpdateUser applies allow-listed fields to an account.
func (s *AuthService) UpdateUser(ctx context.Context, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// DeleteUser removes an account permanently.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventUserDeleted, events.UserDeletedPayload{UserID: id})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
