package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// UserRepository captures the user registry operations the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user persistence.User) error
	ListUsers(ctx context.Context) ([]persistence.User, error)
}

// UserService manages the user registry.
type UserService struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService constructs a user service.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateUser validates and persists a new user.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (user persistence.User, err error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "UserService", "CreateUser", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Age < 0 {
		vErr.add("age", "age must not be negative")
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	createdAt := s.now()
	user = persistence.User{
		ID:        s.idGenerator(),
		Name:      input.Name,
		Age:       input.Age,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		err = mapLedgerError(err)
		return persistence.User{}, err
	}
	return user, nil
}

// ListUsers returns every registered user.
func (s *UserService) ListUsers(ctx context.Context) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return users, nil
}
