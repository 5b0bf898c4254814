package domain

import (
	"context"
	"time"
)

// Event is a marketing event shown on the public site and managed in the
// admin dashboard. Dates and times are kept as separate strings because the
// public site renders them verbatim (e.g. "2025-03-14" / "18:30").
type Event struct {
	ID            int64
	Title         string
	StartDate     string
	StartTime     string
	EndDate       string
	EndTime       string
	Location      string
	Venue         string
	Address       string
	Description   string
	Region        string
	Image         string
	Disabled      bool
	MapLink       string
	Link          string
	EmailTemplate string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventDraft carries the editable fields of an event for create and update.
type EventDraft struct {
	Title         string
	StartDate     string
	StartTime     string
	EndDate       string
	EndTime       string
	Location      string
	Venue         string
	Address       string
	Description   string
	Region        string
	Image         string
	MapLink       string
	Link          string
	EmailTemplate string
}

// EventFilter narrows event listings. Zero values mean "no filter".
type EventFilter struct {
	Region          string
	IncludeDisabled bool
}

type EventRepository interface {
	GetByID(ctx context.Context, eventID int64) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]Event, error)
	Create(ctx context.Context, draft EventDraft) (*Event, error)
	Update(ctx context.Context, eventID int64, draft EventDraft) (*Event, error)
	SetDisabled(ctx context.Context, eventID int64, disabled bool) error
	Delete(ctx context.Context, eventID int64) error
}
