package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthSession is a server-side login session as the auth service sees it.
type AuthSession struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// AuthService is the authentication collaborator: it owns credentials and
// server-side sessions. The session manager and HTTP layer consume it; they
// never reach into its storage directly.
type AuthService interface {
	// SignIn verifies credentials and opens a server-side session.
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	// SignOut closes the session. Unknown tokens are not an error.
	SignOut(ctx context.Context, token string) error
	// GetSession returns the session for a token, or ErrSessionNotFound.
	GetSession(ctx context.Context, token string) (*AuthSession, error)
}
