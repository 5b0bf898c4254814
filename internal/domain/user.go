package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the access tier assigned to a dashboard user.
type Role string

const (
	RoleSuperAdmin          Role = "super-admin"
	RoleAdmin               Role = "admin"
	RoleMarketingSupervisor Role = "marketing-supervisor"
	RoleMarketing           Role = "marketing"
	RoleMarketingIntern     Role = "marketing-intern"
)

// Permissions describes what a role may do in the dashboard.
type Permissions struct {
	Label              string
	Description        string
	CanCreateEvents    bool
	CanEditEvents      bool
	CanDeleteEvents    bool
	CanManageUsers     bool
	CanViewAnalytics   bool
	CanManageAdmins    bool
	CanEditPermissions bool
}

// rolePermissions is the authoritative role-to-capability matrix.
var rolePermissions = map[Role]Permissions{
	RoleSuperAdmin: {
		Label:              "Super Admin",
		Description:        "Full access to all features, including managing admins and permissions",
		CanCreateEvents:    true,
		CanEditEvents:      true,
		CanDeleteEvents:    true,
		CanManageUsers:     true,
		CanViewAnalytics:   true,
		CanManageAdmins:    true,
		CanEditPermissions: true,
	},
	RoleAdmin: {
		Label:            "Admin",
		Description:      "Full access to all features including user management",
		CanCreateEvents:  true,
		CanEditEvents:    true,
		CanDeleteEvents:  true,
		CanManageUsers:   true,
		CanViewAnalytics: true,
	},
	RoleMarketingSupervisor: {
		Label:            "Marketing Supervisor",
		Description:      "Can create, edit and approve events",
		CanCreateEvents:  true,
		CanEditEvents:    true,
		CanViewAnalytics: true,
	},
	RoleMarketing: {
		Label:           "Marketing",
		Description:     "Can create and edit events",
		CanCreateEvents: true,
		CanEditEvents:   true,
	},
	RoleMarketingIntern: {
		Label:         "Marketing Intern",
		Description:   "Can view and suggest edits to events",
		CanEditEvents: true,
	},
}

// Permissions returns the capability set for the role. Unknown roles get an
// all-false set, which denies everything.
func (r Role) Permissions() Permissions {
	return rolePermissions[r]
}

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Roles returns all known roles, useful for validation and admin UIs.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleMarketingSupervisor, RoleMarketing, RoleMarketingIntern}
}

type User struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Role       Role
	CreatedAt  time.Time
	LastSignIn time.Time
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Email *string
	Name  *string
	Role  *Role
}

type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, email, name string, role Role, passwordHash string) (*User, error)
	Update(ctx context.Context, userID uuid.UUID, update UserUpdate) (*User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	PasswordHash(ctx context.Context, email string) (uuid.UUID, string, error)
	RecordSignIn(ctx context.Context, userID uuid.UUID, at time.Time) error
}
