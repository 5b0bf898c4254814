package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadStatus tracks a lead through the marketing funnel.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Valid reports whether the status is a known funnel stage.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Source    string
	Status    LeadStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmailTemplate struct {
	ID          uuid.UUID
	Name        string
	Subject     string
	Content     string
	HTMLContent string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EmailSignature struct {
	ID        uuid.UUID
	Name      string
	Content   string
	IsDefault bool
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LeadRepository interface {
	GetByID(ctx context.Context, leadID uuid.UUID) (*Lead, error)
	List(ctx context.Context) ([]Lead, error)
	Create(ctx context.Context, name, email, phone, source string) (*Lead, error)
	UpdateStatus(ctx context.Context, leadID uuid.UUID, status LeadStatus) error
	AppendNote(ctx context.Context, leadID uuid.UUID, note string) error
	Delete(ctx context.Context, leadID uuid.UUID) error
}

type TemplateRepository interface {
	GetTemplate(ctx context.Context, templateID uuid.UUID) (*EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]EmailTemplate, error)
	SaveTemplate(ctx context.Context, tmpl EmailTemplate) (*EmailTemplate, error)
	DeleteTemplate(ctx context.Context, templateID uuid.UUID) error

	ListSignatures(ctx context.Context, userID uuid.UUID) ([]EmailSignature, error)
	SaveSignature(ctx context.Context, sig EmailSignature) (*EmailSignature, error)
	DeleteSignature(ctx context.Context, signatureID uuid.UUID) error
}

// EmailSender delivers outgoing lead communication. Delivery mechanics are
// outside this layer; implementations may queue, send, or just log.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
