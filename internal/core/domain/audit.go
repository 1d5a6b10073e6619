package domain

import "time"

// SecurityEventType classifies an entry in the security audit trail.
type SecurityEventType string

const (
	EventLoginSuccess    SecurityEventType = "login_success"
	EventLoginFailed     SecurityEventType = "login_failed"
	EventLoginLocked     SecurityEventType = "login_locked"
	EventUserRegistered  SecurityEventType = "user_registered"
	EventAdminRegistered SecurityEventType = "admin_registered"
	EventLogout          SecurityEventType = "logout"
)

// SecurityEvent records a single authentication-related occurrence. Events are
// written asynchronously and never block or fail the request that produced them.
type SecurityEvent struct {
	Type     SecurityEventType `json:"type" bson:"type"`
	Username string            `json:"username" bson:"username"`
	UserID   string            `json:"user_id,omitempty" bson:"user_id,omitempty"`
	At       time.Time         `json:"at" bson:"at"`
}
