package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/service/auth"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	// Role defaults to member. Admin accounts cannot self-register.
	Role domain.Role
}

// ProfileUpdate carries the optional fields of a profile change.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// UserService provides registration, authentication and profile operations.
type UserService interface {
	// Register creates an account. Returns store.ErrEmailExists for a taken email.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate returns the user whose credentials match, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile changes the user's name and/or password.
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*domain.User, error)
}

type userServiceImpl struct {
	tx     store.TxRunner
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(tx store.TxRunner, users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) (UserService, error) {
	if tx == nil || users == nil || hasher == nil {
		return nil, domain.NewValidationError("dependencies", "user service dependencies cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		tx:     tx,
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.Role == domain.RoleAdmin {
		return nil, domain.NewValidationError("role", "admin accounts cannot be registered", domain.ErrInvalidRole)
	}

	user, err := domain.NewUser(in.Email, in.Name, in.Password, in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register with existing email", slog.String("email", user.Email))
			return nil, err
		}
		log.Error("failed to save user", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", "failed to save user", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "authenticate", "failed to load user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			user.Name = strings.TrimSpace(*in.Name)
		}
		if in.Password != nil {
			if err := domain.ValidatePassword(*in.Password); err != nil {
				return err
			}
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return NewServiceError("user", "update_profile", "failed to hash password", err)
			}
			user.HashedPassword = hash
		}
		if err := user.Validate(); err != nil {
			return err
		}

		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		log.Debug("profile update failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("profile updated", slog.String("user_id", userID.String()))
	return updated, nil
}
