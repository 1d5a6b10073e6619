package domain

import "time"

// LoginStatus is the outcome of a single login attempt.
type LoginStatus string

const (
	LoginSuccess            LoginStatus = "Success"
	LoginLocked             LoginStatus = "Locked"
	LoginInvalidCredentials LoginStatus = "InvalidCredentials"
)

// LoginResult is what a login attempt produces. A token is only ever present
// when Status is LoginSuccess; an unknown username and a wrong password yield
// the exact same value so callers cannot enumerate accounts.
type LoginResult struct {
	Status    LoginStatus `json:"status"`
	Token     string      `json:"token,omitempty"`
	ExpiresAt time.Time   `json:"expires_at,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
}
