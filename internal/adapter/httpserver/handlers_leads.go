package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
)

func (s *Server) handleListLeads(c echo.Context) error {
	leads, err := s.app.ListLeads(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"leads": leads}); err != nil {
		return fmt.Errorf("failed to write leads response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateLeadStatus(c echo.Context) error {
	id, err := uuidParam(c, "lead")
	if err != nil {
		return err
	}
	var req struct {
		Status domain.LeadStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.app.UpdateLeadStatus(c.Request().Context(), actorFrom(c), id, req.Status); err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleAppendLeadNote(c echo.Context) error {
	id, err := uuidParam(c, "lead")
	if err != nil {
		return err
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.app.AppendLeadNote(c.Request().Context(), actorFrom(c), id, req.Note); err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteLead(c echo.Context) error {
	id, err := uuidParam(c, "lead")
	if err != nil {
		return err
	}
	if err := s.app.DeleteLead(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleSendLeadEmail(c echo.Context) error {
	id, err := uuidParam(c, "lead")
	if err != nil {
		return err
	}
	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return apperrors.ValidationError("invalid template id")
	}
	if err := s.app.SendLeadEmail(c.Request().Context(), actorFrom(c), id, templateID); err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]string{"status": "sent"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

type templateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	HTMLContent string `json:"html_content"`
}

func (s *Server) handleListTemplates(c echo.Context) error {
	templates, err := s.app.ListTemplates(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"templates": templates}); err != nil {
		return fmt.Errorf("failed to write templates response: %w", err)
	}
	return nil
}

func (s *Server) handleSaveTemplate(c echo.Context) error {
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	tmpl := domain.EmailTemplate{
		Name:        req.Name,
		Subject:     req.Subject,
		Content:     req.Content,
		HTMLContent: req.HTMLContent,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return apperrors.ValidationError("invalid template id")
		}
		tmpl.ID = id
	}
	saved, err := s.app.SaveTemplate(c.Request().Context(), actorFrom(c), tmpl)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"template": saved}); err != nil {
		return fmt.Errorf("failed to write template response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteTemplate(c echo.Context) error {
	id, err := uuidParam(c, "template")
	if err != nil {
		return err
	}
	if err := s.app.DeleteTemplate(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

type signatureRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsDefault bool   `json:"is_default"`
}

func (s *Server) handleListSignatures(c echo.Context) error {
	signatures, err := s.app.ListSignatures(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"signatures": signatures}); err != nil {
		return fmt.Errorf("failed to write signatures response: %w", err)
	}
	return nil
}

func (s *Server) handleSaveSignature(c echo.Context) error {
	var req signatureRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	sig := domain.EmailSignature{
		Name:      req.Name,
		Content:   req.Content,
		IsDefault: req.IsDefault,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return apperrors.ValidationError("invalid signature id")
		}
		sig.ID = id
	}
	saved, err := s.app.SaveSignature(c.Request().Context(), actorFrom(c), sig)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"signature": saved}); err != nil {
		return fmt.Errorf("failed to write signature response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteSignature(c echo.Context) error {
	id, err := uuidParam(c, "signature")
	if err != nil {
		return err
	}
	if err := s.app.DeleteSignature(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
