package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/salvadorquinn/studynet/internal/domain"
)

// SessionStore keeps server-side login sessions in Redis, keyed by token.
// The key TTL is the single source of truth for session lifetime: an expired
// session simply stops existing.
type SessionStore struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

func NewSessionStore(rdb *goredis.Client, clock clockwork.Clock) *SessionStore {
	return &SessionStore{rdb: rdb, clock: clock}
}

type sessionRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionKey(token string) string {
	return "session:" + token
}

// Save writes the session under its token with a TTL derived from ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, session domain.AuthSession) error {
	ttl := session.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", session.ExpiresAt)
	}

	payload, err := json.Marshal(sessionRecord{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(session.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the session for a token, or domain.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.AuthSession, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &domain.AuthSession{
		Token:     token,
		UserID:    record.UserID,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Delete removes a session. Deleting a token that does not exist is not an
// error, so sign-out stays idempotent.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
