package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
)

func (s *Server) registerAdminRoutes(csrfMiddleware echo.MiddlewareFunc) {
	admin := s.echo.Group("/api/admin", s.requireAuth, csrfMiddleware)

	admin.GET("/events", s.handleListEvents)
	admin.GET("/events/:id", s.handleGetEvent)
	admin.POST("/events", s.handleCreateEvent)
	admin.PUT("/events/:id", s.handleUpdateEvent)
	admin.POST("/events/:id/clone", s.handleCloneEvent)
	admin.PATCH("/events/:id/disabled", s.handleSetEventDisabled)
	admin.DELETE("/events/:id", s.handleDeleteEvent)

	admin.GET("/users", s.handleListUsers)
	admin.POST("/users", s.handleCreateUser)
	admin.PATCH("/users/:id", s.handleUpdateUser)
	admin.DELETE("/users/:id", s.handleDeleteUser)

	admin.GET("/leads", s.handleListLeads)
	admin.PATCH("/leads/:id/status", s.handleUpdateLeadStatus)
	admin.POST("/leads/:id/notes", s.handleAppendLeadNote)
	admin.DELETE("/leads/:id", s.handleDeleteLead)
	admin.POST("/leads/:id/email", s.handleSendLeadEmail)

	admin.GET("/templates", s.handleListTemplates)
	admin.POST("/templates", s.handleSaveTemplate)
	admin.DELETE("/templates/:id", s.handleDeleteTemplate)

	admin.GET("/signatures", s.handleListSignatures)
	admin.POST("/signatures", s.handleSaveSignature)
	admin.DELETE("/signatures/:id", s.handleDeleteSignature)
}

func eventIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("invalid event id")
	}
	return id, nil
}

type eventRequest struct {
	Title         string `json:"title"`
	StartDate     string `json:"start_date"`
	StartTime     string `json:"start_time"`
	EndDate       string `json:"end_date"`
	EndTime       string `json:"end_time"`
	Location      string `json:"location"`
	Venue         string `json:"venue"`
	Address       string `json:"address"`
	Description   string `json:"description"`
	Region        string `json:"region"`
	Image         string `json:"image"`
	MapLink       string `json:"map_link"`
	Link          string `json:"link"`
	EmailTemplate string `json:"email_template"`
}

func (r eventRequest) toDraft() domain.EventDraft {
	return domain.EventDraft{
		Title:         r.Title,
		StartDate:     r.StartDate,
		StartTime:     r.StartTime,
		EndDate:       r.EndDate,
		EndTime:       r.EndTime,
		Location:      r.Location,
		Venue:         r.Venue,
		Address:       r.Address,
		Description:   r.Description,
		Region:        r.Region,
		Image:         r.Image,
		MapLink:       r.MapLink,
		Link:          r.Link,
		EmailTemplate: r.EmailTemplate,
	}
}

func (s *Server) handleListEvents(c echo.Context) error {
	filter := domain.EventFilter{Region: c.QueryParam("region")}
	events, err := s.app.ListEvents(c.Request().Context(), actorFrom(c), filter)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"events": events}); err != nil {
		return fmt.Errorf("failed to write events response: %w", err)
	}
	return nil
}

func (s *Server) handleGetEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	event, err := s.app.GetEvent(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"event": event}); err != nil {
		return fmt.Errorf("failed to write event response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	event, err := s.app.CreateEvent(c.Request().Context(), actorFrom(c), req.toDraft())
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusCreated, map[string]any{"event": event}); err != nil {
		return fmt.Errorf("failed to write event response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	event, err := s.app.UpdateEvent(c.Request().Context(), actorFrom(c), id, req.toDraft())
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"event": event}); err != nil {
		return fmt.Errorf("failed to write event response: %w", err)
	}
	return nil
}

func (s *Server) handleCloneEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	event, err := s.app.CloneEvent(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusCreated, map[string]any{"event": event}); err != nil {
		return fmt.Errorf("failed to write event response: %w", err)
	}
	return nil
}

func (s *Server) handleSetEventDisabled(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	var req struct {
		Disabled bool `json:"disabled"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.app.SetEventDisabled(c.Request().Context(), actorFrom(c), id, req.Disabled); err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	if err := s.app.DeleteEvent(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
