package ports

import (
	"context"
	"time"

	"github.com/primeshop/account-service/internal/core/domain"
)

// RegisterUserInput is the public registration payload.
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
}

// RegisterAdminInput is the privileged registration payload. Admins carry no
// profile fields.
type RegisterAdminInput struct {
	Username string
	Email    string
	Password string
}

// AccountService orchestrates credential verification, registration, and
// token issuance.
type AccountService interface {
	Login(ctx context.Context, username, password string) (domain.LoginResult, error)
	RegisterUser(ctx context.Context, in RegisterUserInput) (*domain.User, error)
	RegisterAdmin(ctx context.Context, in RegisterAdminInput) (*domain.User, error)
	LogOut(ctx context.Context, userID, username string) error
}

// SessionStore is the session-layer hook: a server-side sign-in marker that
// LogOut clears. Tokens themselves are stateless and are not revoked by it.
type SessionStore interface {
	SignIn(ctx context.Context, userID string, expiresAt time.Time) error
	SignOut(ctx context.Context, userID string) error
}
