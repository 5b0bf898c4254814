package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
	"github.com/salvadorquinn/studynet/internal/session"
	"github.com/salvadorquinn/studynet/internal/validation"
)

func (s *Server) registerAuthRoutes(csrfMiddleware echo.MiddlewareFunc) {
	s.echo.POST("/api/auth/login", s.handleLogin, slidingWindowLimit("login", s.loginLimiter))
	s.echo.POST("/api/auth/logout", s.handleLogout, s.requireAuth, csrfMiddleware)
	s.echo.POST("/api/auth/refresh", s.handleRefresh, s.requireAuth, csrfMiddleware)
	s.echo.GET("/api/me", s.handleMe, s.requireAuth)
	s.echo.PATCH("/api/me", s.handleUpdateProfile, s.requireAuth, csrfMiddleware)
}

// requireAuth resolves the cookie token to a session manager, counts the
// request as activity, and stashes the principal on the echo context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return apperrors.UnauthorizedError("not signed in")
		}

		token, ok := cookie.Values[sessionKeyToken].(string)
		if !ok || token == "" {
			return apperrors.UnauthorizedError("not signed in")
		}

		manager, err := s.sessions.Resolve(c.Request().Context(), token)
		if err != nil {
			// Revoked, idle-expired, or the user record is gone. Drop the
			// cookie so the client stops presenting a dead token.
			slog.Info("Session token no longer valid, invalidating cookie")
			cookie.Options.MaxAge = -1
			_ = cookie.Save(c.Request(), c.Response().Writer)
			return apperrors.UnauthorizedError("session expired")
		}

		manager.RecordActivity()
		user := manager.GetUser()
		if user == nil {
			return apperrors.UnauthorizedError("session expired")
		}

		c.Set("actor", user)
		c.Set("userID", user.ID)
		c.Set("sessionToken", token)
		c.Set("sessionManager", manager)
		return next(c)
	}
}

func actorFrom(c echo.Context) *domain.User {
	actor, _ := c.Get("actor").(*domain.User)
	return actor
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
	Label string      `json:"role_label"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		Label: u.Role.Permissions().Label,
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if !validation.Email(req.Email) || req.Password == "" {
		return apperrors.ValidationError("email and password are required")
	}

	ctx := c.Request().Context()
	authSession, err := s.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return apperrors.UnauthorizedError("invalid email or password")
		}
		return apperrors.InternalError("failed to sign in", err)
	}

	manager, err := s.sessions.Resolve(ctx, authSession.Token)
	if err != nil {
		return apperrors.InternalError("failed to establish session", err)
	}

	// A successful login clears the attempt window for this client.
	s.loginLimiter.Reset(c.RealIP())

	// Regenerate the cookie session after authentication so a session ID
	// fixated before login cannot be replayed afterwards.
	cookie, err := s.sessionStore.Get(c.Request(), sessionName)
	if err == nil {
		cookie.Options.MaxAge = -1
		if err := cookie.Save(c.Request(), c.Response().Writer); err != nil {
			return apperrors.InternalError("failed to invalidate old session", err)
		}
	}
	cookie, err = s.sessionStore.New(c.Request(), sessionName)
	if err != nil {
		return apperrors.InternalError("failed to create session", err)
	}
	cookie.Values[sessionKeyToken] = authSession.Token
	if err := cookie.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	user := manager.GetUser()
	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "role", user.Role)

	if err := c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write login response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	token, _ := c.Get("sessionToken").(string)

	if err := s.sessions.Discard(ctx, token); err != nil {
		slog.ErrorContext(ctx, "Failed to discard session during logout", "error", err)
	}

	cookie, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		cookie, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			return apperrors.InternalError("failed to create session during logout", err)
		}
	}
	cookie.Options.MaxAge = -1
	if err := cookie.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save logout session", err)
	}

	slog.InfoContext(ctx, "User logged out")

	if err := c.JSON(http.StatusOK, map[string]string{"status": "signed out"}); err != nil {
		return fmt.Errorf("failed to write logout response: %w", err)
	}
	return nil
}

func (s *Server) handleRefresh(c echo.Context) error {
	manager, _ := c.Get("sessionManager").(*session.Manager)
	if manager == nil {
		return apperrors.UnauthorizedError("not signed in")
	}

	if err := manager.RefreshSession(c.Request().Context()); err != nil {
		return apperrors.UnauthorizedError("session expired")
	}
	user := manager.GetUser()
	if user == nil {
		return apperrors.UnauthorizedError("session expired")
	}

	if err := c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write refresh response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	if err := c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(actorFrom(c))}); err != nil {
		return fmt.Errorf("failed to write profile response: %w", err)
	}
	return nil
}

type updateProfileRequest struct {
	Name *string `json:"name"`
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Name != nil && !validation.Required(*req.Name) {
		return apperrors.ValidationError("name must not be empty")
	}

	manager, _ := c.Get("sessionManager").(*session.Manager)
	if manager == nil {
		return apperrors.UnauthorizedError("not signed in")
	}

	update := domain.UserUpdate{Name: req.Name}
	if err := manager.UpdateUserData(c.Request().Context(), update); err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			return apperrors.UnauthorizedError("session expired")
		}
		return apperrors.InternalError("failed to update profile", err)
	}

	if err := c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(manager.GetUser())}); err != nil {
		return fmt.Errorf("failed to write profile response: %w", err)
	}
	return nil
}
