// Package auth implements domain.AuthService: credential verification against
// the user store and server-side sessions in Redis.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/domain"
)

const defaultSessionTTL = 168 * time.Hour

// CredentialStore is the slice of the user repository the auth service needs.
type CredentialStore interface {
	PasswordHash(ctx context.Context, email string) (uuid.UUID, string, error)
	RecordSignIn(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// SessionStore persists server-side sessions keyed by token.
type SessionStore interface {
	Save(ctx context.Context, session domain.AuthSession) error
	Get(ctx context.Context, token string) (*domain.AuthSession, error)
	Delete(ctx context.Context, token string) error
}

type Service struct {
	credentials CredentialStore
	sessions    SessionStore
	clock       clockwork.Clock
	sessionTTL  time.Duration
}

var _ domain.AuthService = (*Service)(nil)

// dummyHash is compared against when the email is unknown, so sign-in takes
// the same time whether or not the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func NewService(credentials CredentialStore, sessions SessionStore, clock clockwork.Clock, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Service{
		credentials: credentials,
		sessions:    sessions,
		clock:       clock,
		sessionTTL:  sessionTTL,
	}
}

// HashPassword produces a bcrypt hash for storing a new user's password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SignIn verifies credentials and opens a server-side session. Wrong email
// and wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	userID, hash, err := s.credentials.PasswordHash(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.SignInsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		metrics.SignInsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := domain.AuthSession{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.clock.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	if err := s.credentials.RecordSignIn(ctx, userID, s.clock.Now()); err != nil {
		slog.Error("Failed to record sign-in time", "user_id", userID, "error", err)
	}

	metrics.SignInsTotal.WithLabelValues("success").Inc()
	metrics.SessionsActive.Inc()
	slog.Info("User signed in", "user_id", userID)
	return &session, nil
}

// SignOut closes the session. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	metrics.SessionsActive.Dec()
	return nil
}

// GetSession returns the live session for a token. Sessions past their expiry
// are treated as gone even if the store has not evicted them yet.
func (s *Service) GetSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.ExpiresAt.After(s.clock.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
