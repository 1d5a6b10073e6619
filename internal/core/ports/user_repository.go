package ports

import (
	"context"

	"github.com/primeshop/account-service/internal/core/domain"
)

// UserUpdate carries the mutable profile fields. Nil pointers are left untouched.
type UserUpdate struct {
	Email    *string
	FullName *string
	Phone    *string
}

// UserRepository is the credential store: it owns User and Role lifetime,
// derives and persists password hashes, and guarantees atomic check-then-create
// semantics for username/email uniqueness (unique indexes, not app-level checks).
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// Create persists the user with a hash derived from the plaintext password.
	// A username or email collision yields domain.ErrDuplicateIdentity.
	Create(ctx context.Context, user *domain.User, password string) (*domain.User, error)
	// CheckPassword verifies plaintext against the stored hash. Pure computation.
	CheckPassword(user *domain.User, password string) bool

	GetRoles(ctx context.Context, user *domain.User) ([]string, error)
	AddToRole(ctx context.Context, user *domain.User, role string) error
	RoleExists(ctx context.Context, name string) (bool, error)
	// EnsureRole creates the role if absent. Idempotent under concurrent first use.
	EnsureRole(ctx context.Context, name string) error

	List(ctx context.Context, page, pageSize int) ([]domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	SetLockout(ctx context.Context, id string, enabled bool) error
	SetPassword(ctx context.Context, id, password string) error
}
