package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
)

type testService struct {
	*Service
	users     *mockUserRepo
	events    *mockEventRepo
	leads     *mockLeadRepo
	templates *mockTemplateRepo
	mailer    *mockMailer
	clock     *clockwork.FakeClock
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	ts := &testService{
		users:     newMockUserRepo(),
		events:    newMockEventRepo(),
		leads:     newMockLeadRepo(),
		templates: newMockTemplateRepo(),
		mailer:    &mockMailer{},
		clock:     clockwork.NewFakeClock(),
	}
	ts.Service = NewService(ts.users, ts.events, ts.leads, ts.templates, ts.mailer, ts.clock)
	t.Cleanup(ts.Service.Stop)
	return ts
}

func validDraft() domain.EventDraft {
	return domain.EventDraft{Title: "Open Day", StartDate: "2026-09-15", Region: "sydney"}
}

func TestCreateEvent_PermissionMatrix(t *testing.T) {
	tests := []struct {
		role    domain.Role
		allowed bool
	}{
		{domain.RoleSuperAdmin, true},
		{domain.RoleAdmin, true},
		{domain.RoleMarketingSupervisor, true},
		{domain.RoleMarketing, true},
		{domain.RoleMarketingIntern, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			ts := newTestService(t)
			_, err := ts.CreateEvent(context.Background(), actorWithRole(tt.role), validDraft())
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				var structured *apperrors.Error
				require.ErrorAs(t, err, &structured)
				assert.Equal(t, apperrors.TypeForbidden, structured.Type)
			}
		})
	}
}

func TestCreateEvent_AnonymousIsUnauthorized(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CreateEvent(context.Background(), nil, validDraft())

	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}

func TestCreateEvent_ValidatesDraft(t *testing.T) {
	actor := actorWithRole(domain.RoleMarketing)

	tests := []struct {
		name  string
		mutate func(*domain.EventDraft)
	}{
		{"missing title", func(d *domain.EventDraft) { d.Title = "  " }},
		{"bad start date", func(d *domain.EventDraft) { d.StartDate = "next tuesday" }},
		{"bad end date", func(d *domain.EventDraft) { d.EndDate = "2026-13-40" }},
		{"bad link", func(d *domain.EventDraft) { d.Link = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestService(t)
			draft := validDraft()
			tt.mutate(&draft)

			_, err := ts.CreateEvent(context.Background(), actor, draft)

			var structured *apperrors.Error
			require.ErrorAs(t, err, &structured)
			assert.Equal(t, apperrors.TypeValidation, structured.Type)
			assert.Empty(t, ts.events.events, "nothing may be stored on validation failure")
		})
	}
}

func TestCreateEvent_SanitizesFreeText(t *testing.T) {
	ts := newTestService(t)
	draft := validDraft()
	draft.Title = "Open <script>Day</script>"

	event, err := ts.CreateEvent(context.Background(), actorWithRole(domain.RoleAdmin), draft)
	require.NoError(t, err)
	assert.Equal(t, "Open scriptDay&#x2F;script", event.Title)
}

func TestCloneEvent(t *testing.T) {
	ts := newTestService(t)
	actor := actorWithRole(domain.RoleMarketing)
	source, err := ts.CreateEvent(context.Background(), actor, validDraft())
	require.NoError(t, err)

	clone, err := ts.CloneEvent(context.Background(), actor, source.ID)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, "Open Day (Copy)", clone.Title)
	assert.Equal(t, source.Region, clone.Region)
}

func TestCloneEvent_RequiresCreatePermission(t *testing.T) {
	ts := newTestService(t)
	source, err := ts.CreateEvent(context.Background(), actorWithRole(domain.RoleAdmin), validDraft())
	require.NoError(t, err)

	_, err = ts.CloneEvent(context.Background(), actorWithRole(domain.RoleMarketingIntern), source.ID)
	assertErrorType(t, err, apperrors.TypeForbidden)
}

func TestCloneEvent_UnknownSource(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CloneEvent(context.Background(), actorWithRole(domain.RoleAdmin), 404)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestDeleteEvent_RequiresDeletePermission(t *testing.T) {
	ts := newTestService(t)
	event, err := ts.CreateEvent(context.Background(), actorWithRole(domain.RoleAdmin), validDraft())
	require.NoError(t, err)

	// Supervisors can edit but not delete.
	err = ts.DeleteEvent(context.Background(), actorWithRole(domain.RoleMarketingSupervisor), event.ID)
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeForbidden, structured.Type)

	require.NoError(t, ts.DeleteEvent(context.Background(), actorWithRole(domain.RoleAdmin), event.ID))
}

func TestPublicEvents_CachesWithinTTL(t *testing.T) {
	ts := newTestService(t)
	_, err := ts.CreateEvent(context.Background(), actorWithRole(domain.RoleAdmin), validDraft())
	require.NoError(t, err)
	ts.events.listCalls = 0

	for i := 0; i < 5; i++ {
		events, err := ts.PublicEvents(context.Background(), "sydney")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	}
	assert.Equal(t, 1, ts.events.listCalls, "repeat reads inside the TTL hit the cache")

	ts.clock.Advance(publicEventsCacheTTL + time.Second)
	_, err = ts.PublicEvents(context.Background(), "sydney")
	require.NoError(t, err)
	assert.Equal(t, 2, ts.events.listCalls, "expiry forces a fresh read")
}

func TestPublicEvents_WritesInvalidateCache(t *testing.T) {
	ts := newTestService(t)
	actor := actorWithRole(domain.RoleAdmin)
	event, err := ts.CreateEvent(context.Background(), actor, validDraft())
	require.NoError(t, err)

	_, err = ts.PublicEvents(context.Background(), "sydney")
	require.NoError(t, err)
	calls := ts.events.listCalls

	require.NoError(t, ts.SetEventDisabled(context.Background(), actor, event.ID, true))

	events, err := ts.PublicEvents(context.Background(), "sydney")
	require.NoError(t, err)
	assert.Empty(t, events, "disabled event must disappear immediately")
	assert.Equal(t, calls+1, ts.events.listCalls)
}

func TestPublicEvents_ErrorsAreNotCached(t *testing.T) {
	ts := newTestService(t)
	ts.events.listErr = errors.New("db down")

	_, err := ts.PublicEvents(context.Background(), "sydney")
	require.Error(t, err)

	ts.events.listErr = nil
	events, err := ts.PublicEvents(context.Background(), "sydney")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPublicEvents_ExcludesDisabled(t *testing.T) {
	ts := newTestService(t)
	actor := actorWithRole(domain.RoleAdmin)
	event, err := ts.CreateEvent(context.Background(), actor, validDraft())
	require.NoError(t, err)
	require.NoError(t, ts.SetEventDisabled(context.Background(), actor, event.ID, true))

	public, err := ts.PublicEvents(context.Background(), "sydney")
	require.NoError(t, err)
	assert.Empty(t, public)

	dashboard, err := ts.ListEvents(context.Background(), actor, domain.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, dashboard, 1, "dashboard still sees disabled events")
}
