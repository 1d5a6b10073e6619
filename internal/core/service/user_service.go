package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserService covers account administration and self-service profile
// operations. It is thin data-access glue over the credential store.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// LockUser sets the account lock flag. enabled=false locks the account
// (inverted polarity, see domain.User).
func (s *UserService) LockUser(ctx context.Context, id string, enabled bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	if err := s.repo.SetLockout(ctx, id, enabled); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	s.log.Info().Str("user_id", id).Bool("lockout_enabled", enabled).Msg("lock flag updated")
	return nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !s.repo.CheckPassword(user, current) {
		return domain.ErrInvalidCredentials
	}
	if err := s.repo.SetPassword(ctx, id, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("password changed")
	return nil
}

// ListUsers returns one page of accounts. Page numbers are 1-based; out-of-range
// paging inputs are clamped rather than rejected.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	users, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SearchUsers matches the query against username, email, and full name.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	if query == "" {
		return nil, fmt.Errorf("search users: empty query: %w", domain.ErrValidation)
	}
	users, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// UpdateUser applies a partial profile update and returns the updated record.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	user, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("profile updated")
	return user, nil
}
