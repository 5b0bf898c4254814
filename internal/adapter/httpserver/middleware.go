package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
	"github.com/salvadorquinn/studynet/internal/platform/requestid"
)

func requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := requestid.WithID(c.Request().Context(), requestid.New())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			var structured *apperrors.Error
			if !errors.As(err, &structured) {
				err = mapDomainError(err)
			}

			structuredErr := apperrors.AsStructuredError(err)
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

// mapDomainError gives the domain sentinels stable HTTP statuses no matter
// which handler let them through.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError("user not found")
	case errors.Is(err, domain.ErrEventNotFound):
		return apperrors.NotFoundError("event not found")
	case errors.Is(err, domain.ErrLeadNotFound):
		return apperrors.NotFoundError("lead not found")
	case errors.Is(err, domain.ErrTemplateNotFound):
		return apperrors.NotFoundError("email template not found")
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNoActiveSession):
		return apperrors.UnauthorizedError("session expired")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.UnauthorizedError("invalid email or password")
	case errors.Is(err, domain.ErrPermissionDenied):
		return apperrors.ForbiddenError("permission denied")
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.ConflictError("email already registered")
	}
	return err
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if userID := c.Get("userID"); userID != nil {
		attrs = append(attrs, "user_id", userID)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeUnauthorized:
		slog.InfoContext(ctx, "Unauthorized", attrs...)
	case apperrors.TypeForbidden:
		slog.WarnContext(ctx, "Forbidden", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Rate limited", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := "internal server error"
	if httpErr.Message != nil {
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	var errType apperrors.ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest:
		errType = apperrors.TypeValidation
	case http.StatusUnauthorized:
		errType = apperrors.TypeUnauthorized
	case http.StatusForbidden:
		errType = apperrors.TypeForbidden
	case http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case http.StatusConflict:
		errType = apperrors.TypeConflict
	case http.StatusTooManyRequests:
		errType = apperrors.TypeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = apperrors.TypeExternal
	default:
		errType = apperrors.TypeInternal
	}

	err := &apperrors.Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}

	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}

	return err
}
