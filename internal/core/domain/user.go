package domain

import (
	"errors"
	"time"
)

// Role names used as opaque authorization tags. A user holds a set of these;
// access checks are membership checks, never a type hierarchy.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountLocked = errors.New("account locked")
var ErrDuplicateIdentity = errors.New("username or email already registered")
var ErrValidation = errors.New("validation failed")
var ErrForbidden = errors.New("access forbidden")

// User is the account aggregate persisted by the credential store.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email" bson:"email"`
	// PasswordHash is a bcrypt hash; plaintext never leaves the store boundary.
	PasswordHash string `json:"-" bson:"password_hash"`
	FullName     string `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	AccountType  string `json:"account_type" bson:"account_type"`
	Promotion    int64  `json:"promotion" bson:"promotion"`
	// LockoutEnabled carries inverted polarity inherited from the existing
	// account data: false means the account is LOCKED and login is rejected.
	// Renaming it to is_locked would invalidate every stored document, so the
	// field is kept verbatim. Flagged for product-owner review.
	LockoutEnabled bool      `json:"lockout_enabled" bson:"lockout_enabled"`
	Roles          []string  `json:"roles,omitempty" bson:"roles,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Locked reports whether login must be rejected for this account.
func (u *User) Locked() bool {
	return !u.LockoutEnabled
}

// Role is a named authorization tag, created lazily on first use.
type Role struct {
	Name      string    `json:"name" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
