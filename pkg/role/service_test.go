package role

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/inmem"
	"github.com/tendant/simple-acm/pkg/user"
	"github.com/tendant/simple-acm/pkg/validation"
)

func newTestServices() (*RoleService, *user.UserService) {
	store := inmem.NewStore()
	stamp := domain.NewStamper(domain.SystemClock{}, domain.NewCounter(0))
	validate := validation.New()
	return NewRoleService(store, stamp, domain.UUIDGenerator{}, validate), user.NewUserService(store, stamp, validate)
}

func seedUser(t *testing.T, users *user.UserService, id string) {
	t.Helper()
	_, err := users.SynchroniseUser(context.Background(), user.SynchroniseUserCommand{
		ID:    id,
		Name:  "User " + id,
		Email: id + "@example.com",
	})
	require.NoError(t, err)
}

func TestRoleLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestServices()

	created, err := service.CreateRole(ctx, CreateRoleCommand{Name: "Administrator", Description: "Full access"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := service.UpdateRole(ctx, UpdateRoleCommand{ID: created.ID, Name: "Admin", Description: "Full access"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", updated.Name)
	assert.Greater(t, updated.Cursor, created.Cursor)

	deleted, err := service.DeleteRole(ctx, DeleteRoleCommand{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())

	_, err = service.GetRole(ctx, GetRoleQuery{ID: created.ID})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestCreateRoleValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestServices()

	_, err := service.CreateRole(ctx, CreateRoleCommand{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))

	violations := errors.GetViolations(err)
	require.Len(t, violations, 1)
	assert.Equal(t, "name", violations[0].Field)
}

func TestAddRoleMemberChecksRunInOrder(t *testing.T) {
	ctx := context.Background()
	service, users := newTestServices()

	// Role existence first.
	_, err := service.AddRoleMember(ctx, AddRoleMemberCommand{RoleID: "missing", UserID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	role, err := service.CreateRole(ctx, CreateRoleCommand{Name: "Admin"})
	require.NoError(t, err)

	// Then user existence.
	_, err = service.AddRoleMember(ctx, AddRoleMemberCommand{RoleID: role.ID, UserID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	seedUser(t, users, "u-1")
	held, err := service.AddRoleMember(ctx, AddRoleMemberCommand{RoleID: role.ID, UserID: "u-1"})
	require.NoError(t, err)
	assert.True(t, held.HasUser("u-1"))

	// Duplicate grant conflicts.
	_, err = service.AddRoleMember(ctx, AddRoleMemberCommand{RoleID: role.ID, UserID: "u-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
}

func TestRemoveRoleMember(t *testing.T) {
	ctx := context.Background()
	service, users := newTestServices()

	role, err := service.CreateRole(ctx, CreateRoleCommand{Name: "Admin"})
	require.NoError(t, err)
	seedUser(t, users, "u-1")

	_, err = service.AddRoleMember(ctx, AddRoleMemberCommand{RoleID: role.ID, UserID: "u-1"})
	require.NoError(t, err)

	removed, err := service.RemoveRoleMember(ctx, RemoveRoleMemberCommand{RoleID: role.ID, UserID: "u-1"})
	require.NoError(t, err)
	assert.Empty(t, removed.Users)

	_, err = service.RemoveRoleMember(ctx, RemoveRoleMemberCommand{RoleID: role.ID, UserID: "u-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestGetRolesFilterByUser(t *testing.T) {
	ctx := context.Background()
	service, users := newTestServices()

	admin, err := service.CreateRole(ctx, CreateRoleCommand{Name: "Admin"})
	require.NoError(t, err)
	_, err = service.CreateRole(ctx, CreateRoleCommand{Name: "Viewer"})
	require.NoError(t, err)

	seedUser(t, users, "u-1")
	_, err = service.AddRoleMember(ctx, AddRoleMemberCommand{RoleID: admin.ID, UserID: "u-1"})
	require.NoError(t, err)

	userID := "u-1"
	roles, err := service.GetRoles(ctx, GetRolesQuery{UserID: &userID, Cursor: 0, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, admin.ID, roles[0].ID)

	all, err := service.GetRoles(ctx, GetRolesQuery{Cursor: 0, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetRolesQueryValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestServices()

	tests := []struct {
		name    string
		query   GetRolesQuery
		wantErr bool
	}{
		{name: "defaults pass", query: GetRolesQuery{Cursor: 0, PageSize: 25}, wantErr: false},
		{name: "negative cursor", query: GetRolesQuery{Cursor: -1, PageSize: 25}, wantErr: true},
		{name: "zero page size", query: GetRolesQuery{Cursor: 0, PageSize: 0}, wantErr: true},
		{name: "page size over limit", query: GetRolesQuery{Cursor: 0, PageSize: 101}, wantErr: true},
		{name: "max page size passes", query: GetRolesQuery{Cursor: 0, PageSize: 100}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.GetRoles(ctx, tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeQueryValidationFailed))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetRolesPagination(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestServices()

	for _, name := range []string{"one", "two", "three"} {
		_, err := service.CreateRole(ctx, CreateRoleCommand{Name: name})
		require.NoError(t, err)
	}

	first, err := service.GetRoles(ctx, GetRolesQuery{Cursor: 0, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)

	rest, err := service.GetRoles(ctx, GetRolesQuery{Cursor: first[1].Cursor, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Greater(t, rest[0].Cursor, first[1].Cursor)
}
