// Package httpserver exposes the application as a JSON API: the public site
// reads events and submits leads, the dashboard drives everything else behind
// cookie authentication.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/salvadorquinn/studynet/internal/domain"
	"github.com/salvadorquinn/studynet/internal/platform/config"
	"github.com/salvadorquinn/studynet/internal/platform/ratelimit"
	sessionpkg "github.com/salvadorquinn/studynet/internal/session"
)

// appService is the slice of the application layer the handlers call.
type appService interface {
	PublicEvents(ctx context.Context, region string) ([]domain.Event, error)
	ListEvents(ctx context.Context, actor *domain.User, filter domain.EventFilter) ([]domain.Event, error)
	GetEvent(ctx context.Context, actor *domain.User, eventID int64) (*domain.Event, error)
	CreateEvent(ctx context.Context, actor *domain.User, draft domain.EventDraft) (*domain.Event, error)
	UpdateEvent(ctx context.Context, actor *domain.User, eventID int64, draft domain.EventDraft) (*domain.Event, error)
	CloneEvent(ctx context.Context, actor *domain.User, eventID int64) (*domain.Event, error)
	SetEventDisabled(ctx context.Context, actor *domain.User, eventID int64, disabled bool) error
	DeleteEvent(ctx context.Context, actor *domain.User, eventID int64) error

	ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error)
	CreateUser(ctx context.Context, actor *domain.User, email, name, password string, role domain.Role) (*domain.User, error)
	UpdateUser(ctx context.Context, actor *domain.User, userID uuid.UUID, update domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.User, userID uuid.UUID) error

	CreateLead(ctx context.Context, name, email, phone, source string) (*domain.Lead, error)
	ListLeads(ctx context.Context, actor *domain.User) ([]domain.Lead, error)
	UpdateLeadStatus(ctx context.Context, actor *domain.User, leadID uuid.UUID, status domain.LeadStatus) error
	AppendLeadNote(ctx context.Context, actor *domain.User, leadID uuid.UUID, note string) error
	DeleteLead(ctx context.Context, actor *domain.User, leadID uuid.UUID) error
	SendLeadEmail(ctx context.Context, actor *domain.User, leadID, templateID uuid.UUID) error

	ListTemplates(ctx context.Context, actor *domain.User) ([]domain.EmailTemplate, error)
	SaveTemplate(ctx context.Context, actor *domain.User, tmpl domain.EmailTemplate) (*domain.EmailTemplate, error)
	DeleteTemplate(ctx context.Context, actor *domain.User, templateID uuid.UUID) error
	ListSignatures(ctx context.Context, actor *domain.User) ([]domain.EmailSignature, error)
	SaveSignature(ctx context.Context, actor *domain.User, sig domain.EmailSignature) (*domain.EmailSignature, error)
	DeleteSignature(ctx context.Context, actor *domain.User, signatureID uuid.UUID) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app      appService
	auth     domain.AuthService
	sessions *sessionpkg.Registry

	sessionStore *sessions.CookieStore

	// Sliding-window limiters for abuse-prone actions. The per-IP token
	// bucket in ratelimit.go covers general traffic.
	loginLimiter *ratelimit.Limiter
	leadLimiter  *ratelimit.Limiter

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, auth domain.AuthService, registry *sessionpkg.Registry, clock clockwork.Clock, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		auth:         auth,
		sessions:     registry,
		sessionStore: setupSessionStore(cfg),
		loginLimiter: ratelimit.New(cfg.LoginMaxAttempts, cfg.LoginWindow, clock),
		leadLimiter:  ratelimit.New(cfg.LeadMaxSubmissions, cfg.LeadWindow, clock),
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName     = "studynet-session"
	sessionKeyToken = "token"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
