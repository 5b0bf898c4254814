package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvadorquinn/studynet/internal/domain"
	apperrors "github.com/salvadorquinn/studynet/internal/platform/errors"
)

func assertErrorType(t *testing.T, err error, want apperrors.ErrorType) {
	t.Helper()
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, want, structured.Type)
}

func TestCreateUser_RequiresManageUsers(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CreateUser(context.Background(), actorWithRole(domain.RoleMarketing),
		"new@studynet.example", "New User", "Str0ng!pass", domain.RoleMarketing)
	assertErrorType(t, err, apperrors.TypeForbidden)

	user, err := ts.CreateUser(context.Background(), actorWithRole(domain.RoleAdmin),
		"new@studynet.example", "New User", "Str0ng!pass", domain.RoleMarketing)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMarketing, user.Role)
}

func TestCreateUser_AdminRolesNeedAdminManagement(t *testing.T) {
	ts := newTestService(t)

	// A plain admin cannot mint another admin.
	_, err := ts.CreateUser(context.Background(), actorWithRole(domain.RoleAdmin),
		"new@studynet.example", "New Admin", "Str0ng!pass", domain.RoleAdmin)
	assertErrorType(t, err, apperrors.TypeForbidden)

	_, err = ts.CreateUser(context.Background(), actorWithRole(domain.RoleSuperAdmin),
		"new@studynet.example", "New Admin", "Str0ng!pass", domain.RoleAdmin)
	assert.NoError(t, err)
}

func TestCreateUser_ValidatesInput(t *testing.T) {
	ts := newTestService(t)
	actor := actorWithRole(domain.RoleAdmin)

	_, err := ts.CreateUser(context.Background(), actor, "not-an-email", "Name", "Str0ng!pass", domain.RoleMarketing)
	assertErrorType(t, err, apperrors.TypeValidation)

	_, err = ts.CreateUser(context.Background(), actor, "ok@studynet.example", "Name", "weak", domain.RoleMarketing)
	assertErrorType(t, err, apperrors.TypeValidation)

	_, err = ts.CreateUser(context.Background(), actor, "ok@studynet.example", "Name", "Str0ng!pass", domain.Role("ceo"))
	assertErrorType(t, err, apperrors.TypeValidation)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ts := newTestService(t)
	actor := actorWithRole(domain.RoleAdmin)

	_, err := ts.CreateUser(context.Background(), actor, "dup@studynet.example", "First", "Str0ng!pass", domain.RoleMarketing)
	require.NoError(t, err)

	_, err = ts.CreateUser(context.Background(), actor, "dup@studynet.example", "Second", "Str0ng!pass", domain.RoleMarketing)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUpdateUser_AdminAccountsAreProtected(t *testing.T) {
	ts := newTestService(t)
	superAdmin := actorWithRole(domain.RoleSuperAdmin)
	target, err := ts.CreateUser(context.Background(), superAdmin,
		"victim@studynet.example", "Target Admin", "Str0ng!pass", domain.RoleAdmin)
	require.NoError(t, err)

	// Another plain admin cannot touch an admin account.
	name := "Renamed"
	_, err = ts.UpdateUser(context.Background(), actorWithRole(domain.RoleAdmin), target.ID, domain.UserUpdate{Name: &name})
	assertErrorType(t, err, apperrors.TypeForbidden)

	updated, err := ts.UpdateUser(context.Background(), superAdmin, target.ID, domain.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateUser_CannotPromoteToAdminWithoutRights(t *testing.T) {
	ts := newTestService(t)
	admin := actorWithRole(domain.RoleAdmin)
	target, err := ts.CreateUser(context.Background(), admin,
		"target@studynet.example", "Target", "Str0ng!pass", domain.RoleMarketing)
	require.NoError(t, err)

	role := domain.RoleSuperAdmin
	_, err = ts.UpdateUser(context.Background(), admin, target.ID, domain.UserUpdate{Role: &role})
	assertErrorType(t, err, apperrors.TypeForbidden)
}

func TestDeleteUser_SelfDeletionRejected(t *testing.T) {
	ts := newTestService(t)
	admin := actorWithRole(domain.RoleAdmin)
	ts.users.users[admin.ID] = admin

	err := ts.DeleteUser(context.Background(), admin, admin.ID)
	assertErrorType(t, err, apperrors.TypeValidation)
	assert.Empty(t, ts.users.deleted)
}

func TestDeleteUser_Success(t *testing.T) {
	ts := newTestService(t)
	admin := actorWithRole(domain.RoleAdmin)
	target, err := ts.CreateUser(context.Background(), admin,
		"target@studynet.example", "Target", "Str0ng!pass", domain.RoleMarketingIntern)
	require.NoError(t, err)

	require.NoError(t, ts.DeleteUser(context.Background(), admin, target.ID))
	assert.Equal(t, []uuid.UUID{target.ID}, ts.users.deleted)
}

func TestListUsers_RequiresManageUsers(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.ListUsers(context.Background(), actorWithRole(domain.RoleMarketingIntern))
	assertErrorType(t, err, apperrors.TypeForbidden)

	_, err = ts.ListUsers(context.Background(), actorWithRole(domain.RoleAdmin))
	assert.NoError(t, err)
}
