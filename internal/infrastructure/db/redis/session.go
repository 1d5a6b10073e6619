package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps a server-side sign-in marker per user, backed by Redis.
// Key format: session:<user_id>
//
// The marker is the session-layer state that LogOut clears. It does not revoke
// issued tokens; those stay valid until their own expiry.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// SignIn records that the user holds an active sign-in. The marker expires
// together with the token issued for this login.
func (s *SessionStore) SignIn(ctx context.Context, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(userID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("session sign-in: %w", err)
	}
	return nil
}

// SignOut clears the sign-in marker. Clearing an absent marker is a no-op.
func (s *SessionStore) SignOut(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("session sign-out: %w", err)
	}
	return nil
}

// IsSignedIn reports whether a sign-in marker exists for the user.
func (s *SessionStore) IsSignedIn(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("session check: %w", err)
	}
	return n > 0, nil
}

func (s *SessionStore) key(userID string) string {
	return "session:" + userID
}
