package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salvadorquinn/studynet/internal/domain"
)

type mockUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	deleted []uuid.UUID
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Create(_ context.Context, email, name string, role domain.Role, _ string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	u := &domain.User{ID: uuid.New(), Email: email, Name: name, Role: role}
	m.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Update(_ context.Context, userID uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Delete(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

func (m *mockUserRepo) PasswordHash(_ context.Context, _ string) (uuid.UUID, string, error) {
	return uuid.Nil, "", domain.ErrUserNotFound
}

func (m *mockUserRepo) RecordSignIn(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

type mockEventRepo struct {
	mu        sync.Mutex
	events    map[int64]*domain.Event
	nextID    int64
	listCalls int
	listErr   error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[int64]*domain.Event), nextID: 1}
}

func (m *mockEventRepo) GetByID(_ context.Context, eventID int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEventRepo) List(_ context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Event
	for _, e := range m.events {
		if filter.Region != "" && e.Region != filter.Region {
			continue
		}
		if e.Disabled && !filter.IncludeDisabled {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockEventRepo) Create(_ context.Context, draft domain.EventDraft) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &domain.Event{
		ID:        m.nextID,
		Title:     draft.Title,
		StartDate: draft.StartDate,
		Region:    draft.Region,
		Link:      draft.Link,
	}
	m.nextID++
	m.events[e.ID] = e
	copied := *e
	return &copied, nil
}

func (m *mockEventRepo) Update(_ context.Context, eventID int64, draft domain.EventDraft) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	e.Title = draft.Title
	e.StartDate = draft.StartDate
	e.Region = draft.Region
	copied := *e
	return &copied, nil
}

func (m *mockEventRepo) SetDisabled(_ context.Context, eventID int64, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Disabled = disabled
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	delete(m.events, eventID)
	return nil
}

type mockLeadRepo struct {
	mu      sync.Mutex
	leads   map[uuid.UUID]*domain.Lead
	notes   []string
	deleted []uuid.UUID
}

func newMockLeadRepo(leads ...*domain.Lead) *mockLeadRepo {
	m := &mockLeadRepo{leads: make(map[uuid.UUID]*domain.Lead)}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *mockLeadRepo) GetByID(_ context.Context, leadID uuid.UUID) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	copied := *l
	return &copied, nil
}

func (m *mockLeadRepo) List(_ context.Context) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Lead
	for _, l := range m.leads {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockLeadRepo) Create(_ context.Context, name, email, phone, source string) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := &domain.Lead{ID: uuid.New(), Name: name, Email: email, Phone: phone, Source: source, Status: domain.LeadStatusNew}
	m.leads[l.ID] = l
	copied := *l
	return &copied, nil
}

func (m *mockLeadRepo) UpdateStatus(_ context.Context, leadID uuid.UUID, status domain.LeadStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return domain.ErrLeadNotFound
	}
	l.Status = status
	return nil
}

func (m *mockLeadRepo) AppendNote(_ context.Context, leadID uuid.UUID, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[leadID]; !ok {
		return domain.ErrLeadNotFound
	}
	m.notes = append(m.notes, note)
	return nil
}

func (m *mockLeadRepo) Delete(_ context.Context, leadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[leadID]; !ok {
		return domain.ErrLeadNotFound
	}
	delete(m.leads, leadID)
	m.deleted = append(m.deleted, leadID)
	return nil
}

type mockTemplateRepo struct {
	mu         sync.Mutex
	templates  map[uuid.UUID]*domain.EmailTemplate
	signatures map[uuid.UUID]*domain.EmailSignature
}

func newMockTemplateRepo(templates ...*domain.EmailTemplate) *mockTemplateRepo {
	m := &mockTemplateRepo{
		templates:  make(map[uuid.UUID]*domain.EmailTemplate),
		signatures: make(map[uuid.UUID]*domain.EmailSignature),
	}
	for _, t := range templates {
		m.templates[t.ID] = t
	}
	return m
}

func (m *mockTemplateRepo) GetTemplate(_ context.Context, templateID uuid.UUID) (*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTemplateRepo) ListTemplates(_ context.Context) ([]domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmailTemplate
	for _, t := range m.templates {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTemplateRepo) SaveTemplate(_ context.Context, tmpl domain.EmailTemplate) (*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	m.templates[tmpl.ID] = &tmpl
	copied := tmpl
	return &copied, nil
}

func (m *mockTemplateRepo) DeleteTemplate(_ context.Context, templateID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[templateID]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(m.templates, templateID)
	return nil
}

func (m *mockTemplateRepo) ListSignatures(_ context.Context, userID uuid.UUID) ([]domain.EmailSignature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmailSignature
	for _, s := range m.signatures {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) SaveSignature(_ context.Context, sig domain.EmailSignature) (*domain.EmailSignature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	m.signatures[sig.ID] = &sig
	copied := sig
	return &copied, nil
}

func (m *mockTemplateRepo) DeleteSignature(_ context.Context, signatureID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.signatures[signatureID]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(m.signatures, signatureID)
	return nil
}

type mockMailer struct {
	mu    sync.Mutex
	sends []string
	errs  []error
}

// Send returns the next queued error, or nil once the queue is drained.
func (m *mockMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	m.sends = append(m.sends, to)
	return nil
}

func actorWithRole(role domain.Role) *domain.User {
	return &domain.User{ID: uuid.New(), Email: "actor@studynet.example", Name: "Actor", Role: role}
}
