package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salvadorquinn/studynet/internal/auth"
	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
	"github.com/salvadorquinn/studynet/internal/validation"
)

// adminTier reports whether a role is one of the admin tiers, which only
// principals with CanManageAdmins may assign or modify.
func adminTier(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleSuperAdmin
}

func (s *Service) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageUsers }, "manage users"); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *Service) CreateUser(ctx context.Context, actor *domain.User, email, name, password string, role domain.Role) (*domain.User, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageUsers }, "manage users"); err != nil {
		return nil, err
	}
	if adminTier(role) {
		if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageAdmins }, "manage admins"); err != nil {
			return nil, err
		}
	}

	if !validation.Email(email) {
		return nil, apperrors.ValidationError("invalid email address")
	}
	if !validation.Required(name) {
		return nil, apperrors.ValidationError("name is required")
	}
	if policy := validation.Password(password); !policy.Valid {
		return nil, apperrors.ValidationError(policy.Message)
	}
	if !role.Valid() {
		return nil, apperrors.ValidationError("unknown role").WithField("role", string(role))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, validation.SanitizeInput(name), role, hash)
	if err != nil {
		return nil, err
	}

	slog.Info("User created", "user_id", user.ID, "role", role, "actor", actor.ID)
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, actor *domain.User, userID uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageUsers }, "manage users"); err != nil {
		return nil, err
	}

	if update.Email != nil && !validation.Email(*update.Email) {
		return nil, apperrors.ValidationError("invalid email address")
	}
	if update.Name != nil {
		if !validation.Required(*update.Name) {
			return nil, apperrors.ValidationError("name is required")
		}
		sanitized := validation.SanitizeInput(*update.Name)
		update.Name = &sanitized
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, apperrors.ValidationError("unknown role").WithField("role", string(*update.Role))
		}
		if adminTier(*update.Role) {
			if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageAdmins }, "manage admins"); err != nil {
				return nil, err
			}
		}
	}

	// Changing an admin-tier account at all requires admin management rights,
	// not just user management.
	existing, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if adminTier(existing.Role) {
		if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageAdmins }, "manage admins"); err != nil {
			return nil, err
		}
	}

	user, err := s.users.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	slog.Info("User updated", "user_id", userID, "actor", actor.ID)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actor *domain.User, userID uuid.UUID) error {
	if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageUsers }, "manage users"); err != nil {
		return err
	}
	if actor.ID == userID {
		return apperrors.ValidationError("cannot delete your own account")
	}

	existing, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if adminTier(existing.Role) {
		if err := requirePermission(actor, func(p domain.Permissions) bool { return p.CanManageAdmins }, "manage admins"); err != nil {
			return err
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	slog.Info("User deleted", "user_id", userID, "actor", actor.ID)
	return nil
}
