package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/salvadorquinn/studynet/internal/domain"
	"github.com/salvadorquinn/studynet/internal/platform/config"
	sessionpkg "github.com/salvadorquinn/studynet/internal/session"
)

// stubApp records calls and serves canned data; permission logic lives in
// the application layer and is tested there.
type stubApp struct {
	mu           sync.Mutex
	events       []domain.Event
	leads        []domain.Lead
	users        []domain.User
	templates    []domain.EmailTemplate
	signatures   []domain.EmailSignature
	createdLeads []string
	err          error
}

func (a *stubApp) fail() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *stubApp) PublicEvents(_ context.Context, _ string) ([]domain.Event, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return a.events, nil
}

func (a *stubApp) ListEvents(_ context.Context, _ *domain.User, _ domain.EventFilter) ([]domain.Event, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return a.events, nil
}

func (a *stubApp) GetEvent(_ context.Context, _ *domain.User, eventID int64) (*domain.Event, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	for i := range a.events {
		if a.events[i].ID == eventID {
			return &a.events[i], nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (a *stubApp) CreateEvent(_ context.Context, _ *domain.User, draft domain.EventDraft) (*domain.Event, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	event := domain.Event{ID: int64(len(a.events) + 1), Title: draft.Title, Region: draft.Region}
	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()
	return &event, nil
}

func (a *stubApp) UpdateEvent(_ context.Context, _ *domain.User, eventID int64, draft domain.EventDraft) (*domain.Event, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return &domain.Event{ID: eventID, Title: draft.Title}, nil
}

func (a *stubApp) CloneEvent(_ context.Context, _ *domain.User, eventID int64) (*domain.Event, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	src, err := a.GetEvent(context.Background(), nil, eventID)
	if err != nil {
		return nil, err
	}
	clone := *src
	clone.ID = int64(len(a.events) + 1)
	clone.Title += " (Copy)"
	a.mu.Lock()
	a.events = append(a.events, clone)
	a.mu.Unlock()
	return &clone, nil
}

func (a *stubApp) SetEventDisabled(_ context.Context, _ *domain.User, _ int64, _ bool) error {
	return a.fail()
}

func (a *stubApp) DeleteEvent(_ context.Context, _ *domain.User, _ int64) error {
	return a.fail()
}

func (a *stubApp) ListUsers(_ context.Context, _ *domain.User) ([]domain.User, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return a.users, nil
}

func (a *stubApp) CreateUser(_ context.Context, _ *domain.User, email, name, _ string, role domain.Role) (*domain.User, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return &domain.User{ID: uuid.New(), Email: email, Name: name, Role: role}, nil
}

func (a *stubApp) UpdateUser(_ context.Context, _ *domain.User, userID uuid.UUID, _ domain.UserUpdate) (*domain.User, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return &domain.User{ID: userID}, nil
}

func (a *stubApp) DeleteUser(_ context.Context, _ *domain.User, _ uuid.UUID) error {
	return a.fail()
}

func (a *stubApp) CreateLead(_ context.Context, name, email, phone, source string) (*domain.Lead, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	lead := domain.Lead{ID: uuid.New(), Name: name, Email: email, Phone: phone, Source: source, Status: domain.LeadStatusNew}
	a.mu.Lock()
	a.createdLeads = append(a.createdLeads, email)
	a.mu.Unlock()
	return &lead, nil
}

func (a *stubApp) ListLeads(_ context.Context, _ *domain.User) ([]domain.Lead, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return a.leads, nil
}

func (a *stubApp) UpdateLeadStatus(_ context.Context, _ *domain.User, _ uuid.UUID, _ domain.LeadStatus) error {
	return a.fail()
}

func (a *stubApp) AppendLeadNote(_ context.Context, _ *domain.User, _ uuid.UUID, _ string) error {
	return a.fail()
}

func (a *stubApp) DeleteLead(_ context.Context, _ *domain.User, _ uuid.UUID) error {
	return a.fail()
}

func (a *stubApp) SendLeadEmail(_ context.Context, _ *domain.User, _, _ uuid.UUID) error {
	return a.fail()
}

func (a *stubApp) ListTemplates(_ context.Context, _ *domain.User) ([]domain.EmailTemplate, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return a.templates, nil
}

func (a *stubApp) SaveTemplate(_ context.Context, _ *domain.User, tmpl domain.EmailTemplate) (*domain.EmailTemplate, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	return &tmpl, nil
}

func (a *stubApp) DeleteTemplate(_ context.Context, _ *domain.User, _ uuid.UUID) error {
	return a.fail()
}

func (a *stubApp) ListSignatures(_ context.Context, _ *domain.User) ([]domain.EmailSignature, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	return a.signatures, nil
}

func (a *stubApp) SaveSignature(_ context.Context, _ *domain.User, sig domain.EmailSignature) (*domain.EmailSignature, error) {
	if err := a.fail(); err != nil {
		return nil, err
	}
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	return &sig, nil
}

func (a *stubApp) DeleteSignature(_ context.Context, _ *domain.User, _ uuid.UUID) error {
	return a.fail()
}

// stubAuth is an in-memory domain.AuthService keyed by fixed credentials.
type stubAuth struct {
	mu       sync.Mutex
	email    string
	password string
	user     *domain.User
	sessions map[string]*domain.AuthSession
	next     int
}

func newStubAuth(user *domain.User, email, password string) *stubAuth {
	return &stubAuth{
		email:    email,
		password: password,
		user:     user,
		sessions: make(map[string]*domain.AuthSession),
	}
}

func (a *stubAuth) SignIn(_ context.Context, email, password string) (*domain.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if email != a.email || password != a.password {
		return nil, domain.ErrInvalidCredentials
	}
	a.next++
	token := "token-" + uuid.NewString()
	sess := &domain.AuthSession{Token: token, UserID: a.user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	a.sessions[token] = sess
	return sess, nil
}

func (a *stubAuth) SignOut(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
	return nil
}

func (a *stubAuth) sessionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

func (a *stubAuth) GetSession(_ context.Context, token string) (*domain.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sess, ok := a.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

type stubUserStore struct {
	user *domain.User
}

func (s *stubUserStore) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, domain.ErrUserNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubUserStore) Update(_ context.Context, userID uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, domain.ErrUserNotFound
	}
	if update.Name != nil {
		s.user.Name = *update.Name
	}
	copied := *s.user
	return &copied, nil
}

type testServer struct {
	*Server
	app   *stubApp
	auth  *stubAuth
	user  *domain.User
	clock *clockwork.FakeClock
}

const (
	testEmail    = "admin@studynet.example"
	testPassword = "Str0ng!pass"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		Port:               "0",
		SessionSecret:      "0123456789abcdef0123456789abcdef",
		SessionMaxAge:      time.Hour,
		IdleTimeout:        30 * time.Minute,
		RequestsPerSecond:  1000,
		RequestBurst:       1000,
		LoginMaxAttempts:   5,
		LoginWindow:        5 * time.Minute,
		LeadMaxSubmissions: 3,
		LeadWindow:         time.Minute,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	user := &domain.User{ID: uuid.New(), Email: testEmail, Name: "Admin", Role: domain.RoleAdmin}
	auth := newStubAuth(user, testEmail, testPassword)
	clock := clockwork.NewFakeClock()
	registry := sessionpkg.NewRegistry(auth, &stubUserStore{user: user}, clock, 30*time.Minute)
	app := &stubApp{}

	srv := NewServer(testConfig(), app, auth, registry, clock, nil)

	return &testServer{Server: srv, app: app, auth: auth, user: user, clock: clock}
}

// newRegistryFor builds a fresh, empty session registry against the same
// auth backend, standing in for a restarted process.
func newRegistryFor(ts *testServer) *sessionpkg.Registry {
	return sessionpkg.NewRegistry(ts.auth, &stubUserStore{user: ts.user}, ts.clock, 30*time.Minute)
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}
