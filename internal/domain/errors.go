package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrTemplateNotFound   = errors.New("email template not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoActiveSession    = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrEmailTaken         = errors.New("email already registered")
)
