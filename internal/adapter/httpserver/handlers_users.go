package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
)

func uuidParam(c echo.Context, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid " + what + " id")
	}
	return id, nil
}

type createUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type updateUserRequest struct {
	Email *string      `json:"email"`
	Name  *string      `json:"name"`
	Role  *domain.Role `json:"role"`
}

func (s *Server) handleListUsers(c echo.Context) error {
	users, err := s.app.ListUsers(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	if err := c.JSON(http.StatusOK, map[string]any{"users": out}); err != nil {
		return fmt.Errorf("failed to write users response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := s.app.CreateUser(c.Request().Context(), actorFrom(c), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusCreated, map[string]any{"user": toUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write user response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	id, err := uuidParam(c, "user")
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	update := domain.UserUpdate{Email: req.Email, Name: req.Name, Role: req.Role}
	user, err := s.app.UpdateUser(c.Request().Context(), actorFrom(c), id, update)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write user response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	id, err := uuidParam(c, "user")
	if err != nil {
		return err
	}
	if err := s.app.DeleteUser(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
