// Package app is the application layer, the only component that references
// multiple domain collaborators. Every use case runs through here: handlers
// stay thin and repositories stay dumb.
package app

import (
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/salvadorquinn/studynet/internal/domain"
)

const (
	publicEventsCacheTTL      = 30 * time.Second
	cacheEvictionInterval     = time.Minute
	maxEventTitleLength       = 200
	maxLeadNoteLength         = 2000
	maxSanitizedContentLength = 10000
)

type Service struct {
	users     domain.UserRepository
	events    domain.EventRepository
	leads     domain.LeadRepository
	templates domain.TemplateRepository
	mailer    domain.EmailSender
	clock     clockwork.Clock

	publicEvents *EventCache
	listGroup    singleflight.Group
	stopEviction func()
}

func NewService(
	users domain.UserRepository,
	events domain.EventRepository,
	leads domain.LeadRepository,
	templates domain.TemplateRepository,
	mailer domain.EmailSender,
	clock clockwork.Clock,
) *Service {
	s := &Service{
		users:        users,
		events:       events,
		leads:        leads,
		templates:    templates,
		mailer:       mailer,
		clock:        clock,
		publicEvents: NewEventCache(publicEventsCacheTTL, clock),
	}
	s.stopEviction = s.publicEvents.StartEvictionTimer(cacheEvictionInterval)
	return s
}

// Stop shuts down background timers.
func (s *Service) Stop() {
	if s.stopEviction != nil {
		s.stopEviction()
	}
}
