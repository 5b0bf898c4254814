package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
	"github.com/salvadorquinn/studynet/internal/platform/retry"
	"github.com/salvadorquinn/studynet/internal/validation"
)

// CreateLead records an enquiry from the public site. No actor: this is the
// one write path open to anonymous visitors, which is why it sits behind the
// strictest rate limit.
func (s *Service) CreateLead(ctx context.Context, name, email, phone, source string) (*domain.Lead, error) {
	if !validation.Required(name) {
		return nil, apperrors.ValidationError("name is required")
	}
	if !validation.Email(email) {
		return nil, apperrors.ValidationError("invalid email address")
	}

	lead, err := s.leads.Create(ctx,
		validation.SanitizeInput(name), email,
		validation.SanitizeInput(phone), validation.SanitizeInput(source))
	if err != nil {
		return nil, err
	}

	slog.Info("Lead created", "lead_id", lead.ID, "source", lead.Source)
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context, actor *domain.User) ([]domain.Lead, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanViewAnalytics }, "view leads"); err != nil {
		return nil, err
	}
	return s.leads.List(ctx)
}

func (s *Service) UpdateLeadStatus(ctx context.Context, actor *domain.User, leadID uuid.UUID, status domain.LeadStatus) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanViewAnalytics }, "manage leads"); err != nil {
		return err
	}
	if !status.Valid() {
		return apperrors.ValidationError("unknown lead status").WithField("status", string(status))
	}
	return s.leads.UpdateStatus(ctx, leadID, status)
}

func (s *Service) AppendLeadNote(ctx context.Context, actor *domain.User, leadID uuid.UUID, note string) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanViewAnalytics }, "manage leads"); err != nil {
		return err
	}
	if !validation.Required(note) {
		return apperrors.ValidationError("note is required")
	}
	if !validation.MaxLength(note, maxLeadNoteLength) {
		return apperrors.ValidationError("note is too long").WithField("max", maxLeadNoteLength)
	}
	return s.leads.AppendNote(ctx, leadID, validation.SanitizeInput(note))
}

func (s *Service) DeleteLead(ctx context.Context, actor *domain.User, leadID uuid.UUID) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageUsers }, "delete leads"); err != nil {
		return err
	}
	return s.leads.Delete(ctx, leadID)
}

// SendLeadEmail renders a stored template and delivers it to the lead. The
// send goes through the retry executor because mail delivery is the flakiest
// dependency this service talks to.
func (s *Service) SendLeadEmail(ctx context.Context, actor *domain.User, leadID, templateID uuid.UUID) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanViewAnalytics }, "email leads"); err != nil {
		return err
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return err
	}
	tmpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}

	result := retry.DoVoid(ctx, retry.Config{
		Clock: s.clock,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			metrics.RetryAttempts.WithLabelValues("send_email").Inc()
			slog.Warn("Retrying lead email", "lead_id", leadID, "attempt", attempt, "error", err)
		},
	}, func() error {
		return s.mailer.Send(ctx, lead.Email, tmpl.Subject, tmpl.Content)
	})
	if !result.Success {
		if result.Attempts > 1 {
			metrics.RetryExhaustions.WithLabelValues("send_email").Inc()
		}
		return apperrors.ExternalError("failed to send email", result.Err).
			WithField("attempts", result.Attempts)
	}

	if err := s.leads.AppendNote(ctx, leadID, "Sent email: "+validation.SanitizeInput(tmpl.Name)); err != nil {
		slog.Error("Failed to record sent email on lead", "lead_id", leadID, "error", err)
	}
	if lead.Status == domain.LeadStatusNew {
		if err := s.leads.UpdateStatus(ctx, leadID, domain.LeadStatusContacted); err != nil {
			slog.Error("Failed to advance lead status", "lead_id", leadID, "error", err)
		}
	}

	slog.Info("Lead email sent", "lead_id", leadID, "template_id", templateID, "actor", actor.ID)
	return nil
}

// --- Email templates and signatures ---

func (s *Service) ListTemplates(ctx context.Context, actor *domain.User) ([]domain.EmailTemplate, error) {
	if actor == nil {
		return nil, apperrors.UnauthorizedError("authentication required")
	}
	return s.templates.ListTemplates(ctx)
}

func (s *Service) SaveTemplate(ctx context.Context, actor *domain.User, tmpl domain.EmailTemplate) (*domain.EmailTemplate, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanCreateEvents }, "manage email templates"); err != nil {
		return nil, err
	}
	if !validation.Required(tmpl.Name) {
		return nil, apperrors.ValidationError("template name is required")
	}
	if !validation.MaxLength(tmpl.Content, maxSanitizedContentLength) {
		return nil, apperrors.ValidationError("template content is too long").WithField("max", maxSanitizedContentLength)
	}
	tmpl.CreatedBy = actor.ID
	return s.templates.SaveTemplate(ctx, tmpl)
}

func (s *Service) DeleteTemplate(ctx context.Context, actor *domain.User, templateID uuid.UUID) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanCreateEvents }, "manage email templates"); err != nil {
		return err
	}
	return s.templates.DeleteTemplate(ctx, templateID)
}

func (s *Service) ListSignatures(ctx context.Context, actor *domain.User) ([]domain.EmailSignature, error) {
	if actor == nil {
		return nil, apperrors.UnauthorizedError("authentication required")
	}
	return s.templates.ListSignatures(ctx, actor.ID)
}

func (s *Service) SaveSignature(ctx context.Context, actor *domain.User, sig domain.EmailSignature) (*domain.EmailSignature, error) {
	if actor == nil {
		return nil, apperrors.UnauthorizedError("authentication required")
	}
	if !validation.Required(sig.Name) {
		return nil, apperrors.ValidationError("signature name is required")
	}
	// Signatures are personal; the actor always owns what they save.
	sig.UserID = actor.ID
	return s.templates.SaveSignature(ctx, sig)
}

func (s *Service) DeleteSignature(ctx context.Context, actor *domain.User, signatureID uuid.UUID) error {
	if actor == nil {
		return apperrors.UnauthorizedError("authentication required")
	}
	return s.templates.DeleteSignature(ctx, signatureID)
}
