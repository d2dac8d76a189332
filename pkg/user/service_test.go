package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/inmem"
	"github.com/tendant/simple-acm/pkg/utils"
	"github.com/tendant/simple-acm/pkg/validation"
)

func newTestService() (*UserService, *inmem.Store) {
	store := inmem.NewStore()
	stamp := domain.NewStamper(domain.SystemClock{}, domain.NewCounter(0))
	return NewUserService(store, stamp, validation.New()), store
}

func TestSynchroniseUserCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.SynchroniseUser(ctx, SynchroniseUserCommand{
		ID:    "u-1",
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", created.Name)
	require.NotNil(t, created.DateLastSynchronised)

	// Same id again: converges to one record with the latest values.
	updated, err := service.SynchroniseUser(ctx, SynchroniseUserCommand{
		ID:    "u-1",
		Name:  "Alice Chen",
		Email: "alice.chen@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", updated.Name)
	assert.Equal(t, created.DateCreated, updated.DateCreated)
	assert.Greater(t, updated.Cursor, created.Cursor)

	users, err := service.GetUsers(ctx, GetUsersQuery{Cursor: 0, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSynchroniseUserValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.SynchroniseUser(ctx, SynchroniseUserCommand{
		ID:    "u-1",
		Email: "not-an-email",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))

	// Both the missing name and the malformed email are reported.
	violations := errors.GetViolations(err)
	require.Len(t, violations, 2)
	fields := []string{violations[0].Field, violations[1].Field}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.GetUser(ctx, GetUserQuery{ID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.SynchroniseUser(ctx, SynchroniseUserCommand{
		ID:    "u-1",
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	_, err = service.DeleteUser(ctx, DeleteUserCommand{ID: "u-1"})
	require.NoError(t, err)

	_, err = service.GetUser(ctx, GetUserQuery{ID: "u-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	// Deleting again reports not-found.
	_, err = service.DeleteUser(ctx, DeleteUserCommand{ID: "u-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestGetUsersFilters(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	seed := []SynchroniseUserCommand{
		{ID: "u-1", Name: "Alice Chen", Email: "alice@example.com"},
		{ID: "u-2", Name: "Bob Miller", Email: "bob@example.com"},
		{ID: "u-3", Name: "Alicia Keys", Email: "alicia@example.com"},
	}
	for _, cmd := range seed {
		_, err := service.SynchroniseUser(ctx, cmd)
		require.NoError(t, err)
	}

	users, err := service.GetUsers(ctx, GetUsersQuery{Name: utils.Ptr("ali"), Cursor: 0, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = service.GetUsers(ctx, GetUsersQuery{Email: utils.Ptr("bob@"), Cursor: 0, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u-2", users[0].ID)
}

func TestGetUsersQueryValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	tests := []struct {
		name    string
		query   GetUsersQuery
		wantErr bool
	}{
		{name: "defaults pass", query: GetUsersQuery{Cursor: 0, PageSize: 25}, wantErr: false},
		{name: "negative cursor", query: GetUsersQuery{Cursor: -1, PageSize: 25}, wantErr: true},
		{name: "zero page size", query: GetUsersQuery{Cursor: 0, PageSize: 0}, wantErr: true},
		{name: "page size over limit", query: GetUsersQuery{Cursor: 0, PageSize: 101}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.GetUsers(ctx, tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeQueryValidationFailed))
			} else {
				require.NoError(t, err)
			}
		})
	}
}
