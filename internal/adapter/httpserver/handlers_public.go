package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerPublicRoutes() {
	s.echo.GET("/api/events", s.handlePublicEvents)
	s.echo.POST("/api/leads", s.handleCreateLead, slidingWindowLimit("lead_capture", s.leadLimiter))
}

func (s *Server) handlePublicEvents(c echo.Context) error {
	events, err := s.app.PublicEvents(c.Request().Context(), c.QueryParam("region"))
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"events": events}); err != nil {
		return fmt.Errorf("failed to write events response: %w", err)
	}
	return nil
}

type createLeadRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

func (s *Server) handleCreateLead(c echo.Context) error {
	var req createLeadRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	lead, err := s.app.CreateLead(c.Request().Context(), req.Name, req.Email, req.Phone, req.Source)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusCreated, map[string]any{"id": lead.ID}); err != nil {
		return fmt.Errorf("failed to write lead response: %w", err)
	}
	return nil
}
