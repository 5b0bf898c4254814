// Package session holds the authoritative "who is logged in" state for a
// running client and enforces inactivity logout. It is deliberately decoupled
// from any particular surface: the HTTP layer reports activity, the manager
// decides when the session dies.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/salvadorquinn/studynet/internal/domain"
)

const defaultIdleTimeout = 30 * time.Minute

// UserStore is the slice of the user repository the manager needs.
type UserStore interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, userID uuid.UUID, update domain.UserUpdate) (*domain.User, error)
}

// Manager owns the current principal and an idle timer. The timer is armed
// exactly while a principal is set; every activity event cancels and
// reschedules it. A generation counter guards against a stale timer firing
// after a fresh session has been established.
type Manager struct {
	auth  domain.AuthService
	users UserStore
	clock clockwork.Clock

	timeout  time.Duration
	onExpire func()

	mu           sync.Mutex
	user         *domain.User
	token        string
	lastActivity time.Time
	timer        clockwork.Timer
	generation   uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides the 30-minute idle timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithOnExpire registers a callback fired after an idle timeout has cleared
// the session. Used to steer the client back to the login surface.
func WithOnExpire(fn func()) Option {
	return func(m *Manager) { m.onExpire = fn }
}

// NewManager creates an inert manager: no principal, no timer.
func NewManager(auth domain.AuthService, users UserStore, clock clockwork.Clock, opts ...Option) *Manager {
	m := &Manager{
		auth:    auth,
		users:   users,
		clock:   clock,
		timeout: defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InitSession installs user as the current principal and arms the idle timer.
// token identifies the server-side session and is used for sign-out and
// refresh. Replaces any previous session.
func (m *Manager) InitSession(user *domain.User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := *user
	m.user = &u
	m.token = token
	m.lastActivity = m.clock.Now()
	m.armTimerLocked()

	slog.Info("Session initialized", "user_id", user.ID, "role", user.Role)
}

// RecordActivity marks the principal as active and rearms the idle timer.
// No-op while anonymous.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return
	}
	m.lastActivity = m.clock.Now()
	m.armTimerLocked()
}

// GetUser returns a snapshot of the current principal, or nil. Reading state
// deliberately does not count as activity.
func (m *Manager) GetUser() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsAuthenticated reports whether a principal is set.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// Token returns the server-side session token, or "" while anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// ClearSession tears down local state and signs out of the auth service.
// Local state is always cleared, even when the remote sign-out fails, so the
// manager never continues with a half-dead session. Idempotent.
func (m *Manager) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	hadSession := m.user != nil
	m.clearLocked()
	m.mu.Unlock()

	if !hadSession {
		return nil
	}

	if err := m.auth.SignOut(ctx, token); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	slog.Info("Session cleared")
	return nil
}

// RefreshSession reconciles local state with the auth service: if the
// server-side session is gone (revoked elsewhere, expired), the local session
// is cleared; otherwise the user record is re-fetched and the session
// re-initialized. Any failure degrades to anonymous rather than keeping a
// principal of unknown validity.
func (m *Manager) RefreshSession(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return nil
	}

	remote, err := m.auth.GetSession(ctx, token)
	if err != nil {
		clearErr := m.ClearSession(ctx)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return clearErr
		}
		slog.Error("Failed to refresh session", "error", err)
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	user, err := m.users.GetByID(ctx, remote.UserID)
	if err != nil {
		if clearErr := m.ClearSession(ctx); clearErr != nil {
			slog.Error("Failed to clear session after refresh failure", "error", clearErr)
		}
		return fmt.Errorf("failed to load user for session: %w", err)
	}

	m.InitSession(user, token)
	return nil
}

// UpdateUserData persists a partial update for the current principal and
// merges it into local state only after the remote write confirms. Returns
// domain.ErrNoActiveSession while anonymous.
func (m *Manager) UpdateUserData(ctx context.Context, update domain.UserUpdate) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return domain.ErrNoActiveSession
	}
	userID := m.user.ID
	generation := m.generation
	m.mu.Unlock()

	updated, err := m.users.Update(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("failed to update user data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The session may have been replaced or cleared while the write was in
	// flight; a stale merge must not resurrect it.
	if m.generation != generation || m.user == nil || m.user.ID != userID {
		return nil
	}

	u := *updated
	m.user = &u
	slog.Info("User data updated", "user_id", userID)
	return nil
}

// armTimerLocked cancels any pending timer and schedules a fresh one. The
// cancel always happens before the new schedule so two live timers can never
// coexist. Must be called with mu held and a principal set.
func (m *Manager) armTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.generation++
	generation := m.generation
	m.timer = m.clock.AfterFunc(m.timeout, func() {
		m.expire(generation)
	})
}

// expire is the idle-timer callback. It re-validates under the lock that it
// is still the live timer and the session is genuinely idle before tearing
// anything down.
func (m *Manager) expire(generation uint64) {
	m.mu.Lock()
	if m.generation != generation || m.user == nil {
		m.mu.Unlock()
		return
	}
	if m.clock.Since(m.lastActivity) < m.timeout {
		m.mu.Unlock()
		return
	}
	token := m.token
	m.clearLocked()
	m.mu.Unlock()

	slog.Info("Session timed out due to inactivity")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.auth.SignOut(ctx, token); err != nil {
		slog.Error("Failed to sign out after idle timeout", "error", err)
	}

	if m.onExpire != nil {
		m.onExpire()
	}
}

// clearLocked nulls the principal and cancels the timer. Must be called with
// mu held.
func (m *Manager) clearLocked() {
	m.user = nil
	m.token = ""
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
