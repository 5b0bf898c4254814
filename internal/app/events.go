package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
	"github.com/salvadorquinn/studynet/internal/platform/retry"
	"github.com/salvadorquinn/studynet/internal/validation"
)

// requirePermission gates a use case on the actor's role. A nil actor is an
// anonymous caller.
func requirePermission(actor *domain.User, allowed func(domain.Permissions) bool, action string) error {
	if actor == nil {
		return apperrors.UnauthorizedError("authentication required")
	}
	if !allowed(actor.Role.Permissions()) {
		return apperrors.ForbiddenError("not permitted to " + action).
			WithField("role", string(actor.Role))
	}
	return nil
}

// PublicEvents lists the enabled events for a region, serving from the TTL
// cache when possible. Concurrent misses for the same region are collapsed
// into one database read.
func (s *Service) PublicEvents(ctx context.Context, region string) ([]domain.Event, error) {
	if events, ok := s.publicEvents.Get(region); ok {
		return events, nil
	}

	v, err, _ := s.listGroup.Do(region, func() (any, error) {
		result := retry.Do(ctx, retry.Config{
			Clock: s.clock,
			OnRetry: func(attempt int, err error, _ time.Duration) {
				metrics.RetryAttempts.WithLabelValues("public_events").Inc()
				slog.Warn("Retrying public event listing", "attempt", attempt, "error", err)
			},
		}, func() ([]domain.Event, error) {
			return s.events.List(ctx, domain.EventFilter{Region: region})
		})
		if !result.Success {
			if result.Attempts > 1 {
				metrics.RetryExhaustions.WithLabelValues("public_events").Inc()
			}
			return nil, result.Err
		}

		s.publicEvents.Set(region, result.Data)
		return result.Data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Event), nil
}

// ListEvents is the dashboard listing: all events, disabled included.
func (s *Service) ListEvents(ctx context.Context, actor *domain.User, filter domain.EventFilter) ([]domain.Event, error) {
	if actor == nil {
		return nil, apperrors.UnauthorizedError("authentication required")
	}
	filter.IncludeDisabled = true
	return s.events.List(ctx, filter)
}

func (s *Service) GetEvent(ctx context.Context, actor *domain.User, eventID int64) (*domain.Event, error) {
	if actor == nil {
		return nil, apperrors.UnauthorizedError("authentication required")
	}
	return s.events.GetByID(ctx, eventID)
}

func (s *Service) CreateEvent(ctx context.Context, actor *domain.User, draft domain.EventDraft) (*domain.Event, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanCreateEvents }, "create events"); err != nil {
		return nil, err
	}
	if err := validateEventDraft(&draft); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.publicEvents.Invalidate()
	slog.Info("Event created", "event_id", event.ID, "actor", actor.ID)
	return event, nil
}

func (s *Service) UpdateEvent(ctx context.Context, actor *domain.User, eventID int64, draft domain.EventDraft) (*domain.Event, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanEditEvents }, "edit events"); err != nil {
		return nil, err
	}
	if err := validateEventDraft(&draft); err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, eventID, draft)
	if err != nil {
		return nil, err
	}

	s.publicEvents.Invalidate()
	slog.Info("Event updated", "event_id", eventID, "actor", actor.ID)
	return event, nil
}

func (s *Service) SetEventDisabled(ctx context.Context, actor *domain.User, eventID int64, disabled bool) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanEditEvents }, "edit events"); err != nil {
		return err
	}
	if err := s.events.SetDisabled(ctx, eventID, disabled); err != nil {
		return err
	}

	s.publicEvents.Invalidate()
	slog.Info("Event visibility changed", "event_id", eventID, "disabled", disabled, "actor", actor.ID)
	return nil
}

// CloneEvent duplicates an existing event as a new draft. The copy starts
// enabled and carries a marked title so editors can tell it apart.
func (s *Service) CloneEvent(ctx context.Context, actor *domain.User, eventID int64) (*domain.Event, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanCreateEvents }, "create events"); err != nil {
		return nil, err
	}

	source, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	draft := domain.EventDraft{
		Title:         source.Title + " (Copy)",
		StartDate:     source.StartDate,
		StartTime:     source.StartTime,
		EndDate:       source.EndDate,
		EndTime:       source.EndTime,
		Location:      source.Location,
		Venue:         source.Venue,
		Address:       source.Address,
		Description:   source.Description,
		Region:        source.Region,
		Image:         source.Image,
		MapLink:       source.MapLink,
		Link:          source.Link,
		EmailTemplate: source.EmailTemplate,
	}
	if !validation.MaxLength(draft.Title, maxEventTitleLength) {
		draft.Title = source.Title
	}

	event, err := s.events.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.publicEvents.Invalidate()
	slog.Info("Event cloned", "source_id", eventID, "event_id", event.ID, "actor", actor.ID)
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, actor *domain.User, eventID int64) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanDeleteEvents }, "delete events"); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return err
	}

	s.publicEvents.Invalidate()
	slog.Info("Event deleted", "event_id", eventID, "actor", actor.ID)
	return nil
}

// validateEventDraft checks the draft and sanitizes its free-text fields in
// place.
func validateEventDraft(draft *domain.EventDraft) error {
	if !validation.Required(draft.Title) {
		return apperrors.ValidationError("title is required")
	}
	if !validation.MaxLength(draft.Title, maxEventTitleLength) {
		return apperrors.ValidationError("title is too long").WithField("max", maxEventTitleLength)
	}
	if !validation.Date(draft.StartDate) {
		return apperrors.ValidationError("start date must be a valid YYYY-MM-DD date")
	}
	if draft.EndDate != "" && !validation.Date(draft.EndDate) {
		return apperrors.ValidationError("end date must be a valid YYYY-MM-DD date")
	}
	for name, link := range map[string]string{"link": draft.Link, "map link": draft.MapLink, "image": draft.Image} {
		if link != "" && !validation.URL(link) {
			return apperrors.ValidationError(name + " must be a valid URL")
		}
	}

	draft.Title = validation.SanitizeInput(draft.Title)
	draft.Location = validation.SanitizeInput(draft.Location)
	draft.Venue = validation.SanitizeInput(draft.Venue)
	draft.Address = validation.SanitizeInput(draft.Address)
	draft.Description = validation.SanitizeInput(draft.Description)
	return nil
}
