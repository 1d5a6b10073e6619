package ports

import (
	"context"

	"github.com/primeshop/account-service/internal/core/domain"
)

// UserService covers the account-management surface outside of login:
// lock administration, password change, lookup, paging, search, profile update.
type UserService interface {
	LockUser(ctx context.Context, id string, enabled bool) error
	ChangePassword(ctx context.Context, id, current, next string) error
	ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SearchUsers(ctx context.Context, query string) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
}
