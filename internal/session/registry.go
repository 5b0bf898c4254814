package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/domain"
)

// Registry holds one Manager per live session token so every signed-in
// principal gets its own idle timer. Managers are created on sign-in and
// rebuilt lazily from the auth service after a restart.
type Registry struct {
	auth    domain.AuthService
	users   UserStore
	clock   clockwork.Clock
	timeout time.Duration

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(auth domain.AuthService, users UserStore, clock clockwork.Clock, timeout time.Duration) *Registry {
	return &Registry{
		auth:     auth,
		users:    users,
		clock:    clock,
		timeout:  timeout,
		managers: make(map[string]*Manager),
	}
}

// Attach installs a fresh manager for token and arms its idle timer.
// Replaces any manager already bound to the token.
func (r *Registry) Attach(user *domain.User, token string) *Manager {
	m := NewManager(r.auth, r.users, r.clock,
		WithTimeout(r.timeout),
		WithOnExpire(func() {
			r.evict(token)
			metrics.SessionTimeouts.Inc()
		}),
	)
	m.InitSession(user, token)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[token] = m
	return m
}

// Resolve returns the manager for token. On a local miss the token is
// validated against the auth service and a manager is rebuilt, so sessions
// survive a process restart as long as the server-side session does.
func (r *Registry) Resolve(ctx context.Context, token string) (*Manager, error) {
	r.mu.Lock()
	m, ok := r.managers[token]
	r.mu.Unlock()
	if ok {
		return m, nil
	}

	remote, err := r.auth.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	user, err := r.users.GetByID(ctx, remote.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return r.Attach(user, token), nil
}

// Discard tears the session down locally and remotely. Unknown tokens are
// not an error.
func (r *Registry) Discard(ctx context.Context, token string) error {
	r.mu.Lock()
	m, ok := r.managers[token]
	delete(r.managers, token)
	r.mu.Unlock()

	if !ok {
		// Never tracked locally; still revoke the server-side session.
		return r.auth.SignOut(ctx, token)
	}
	return m.ClearSession(ctx)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

func (r *Registry) evict(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, token)
}
