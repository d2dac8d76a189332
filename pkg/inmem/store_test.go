package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
)

func newTestStamper() domain.Stamper {
	return domain.NewStamper(domain.SystemClock{}, domain.NewCounter(0))
}

func TestUnitOfWorkRepositoryCaching(t *testing.T) {
	store := NewStore()
	uow := store.NewUnitOfWork()

	// Repeated accessor calls must hand back the same repository instance.
	assert.Same(t, uow.Users(), uow.Users())
	assert.Same(t, uow.Organisations(), uow.Organisations())
	assert.Same(t, uow.Groups(), uow.Groups())
	assert.Same(t, uow.Roles(), uow.Roles())
	assert.Same(t, uow.Dummies(), uow.Dummies())
}

func TestSaveChangesWithNothingPending(t *testing.T) {
	store := NewStore()
	uow := store.NewUnitOfWork()

	require.NoError(t, uow.SaveChanges(context.Background()))
}

func TestNothingPersistsBeforeSaveChanges(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	user := domain.NewUser(stamp, "u-1", "Alice", "alice@example.com")
	_, err := uow.Users().Create(ctx, user)
	require.NoError(t, err)

	// A second unit of work must not see the uncommitted insert.
	other := store.NewUnitOfWork()
	got, err := other.Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, uow.SaveChanges(ctx))

	got, err = other.Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
}

func TestGetByIDFiltersSoftDeleted(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	group := domain.NewGroup(stamp, "g-1", "Engineering", "", "org-1")
	_, err := uow.Groups().Create(ctx, group)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	group.SoftDelete(stamp)
	uow = store.NewUnitOfWork()
	_, err = uow.Groups().Update(ctx, group)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := store.NewUnitOfWork().Groups().GetByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The row itself is still there.
	store.mu.RLock()
	_, ok := store.groups["g-1"]
	store.mu.RUnlock()
	assert.True(t, ok)
}

func TestSaveChangesAtomicOnConstraintViolation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	_, err := uow.Users().Create(ctx, domain.NewUser(stamp, "u-1", "Alice", "alice@example.com"))
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	// Batch with a valid insert followed by a duplicate-id insert: nothing
	// from the batch may land.
	uow = store.NewUnitOfWork()
	_, err = uow.Users().Create(ctx, domain.NewUser(stamp, "u-2", "Bob", "bob@example.com"))
	require.NoError(t, err)
	_, err = uow.Users().Create(ctx, domain.NewUser(stamp, "u-1", "Imposter", "x@example.com"))
	require.NoError(t, err)

	err = uow.SaveChanges(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageFailure))

	got, err := store.NewUnitOfWork().Users().GetByID(ctx, "u-2")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.NewUnitOfWork().Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
}

func TestHardDeleteCascadesMembership(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	_, err := uow.Users().Create(ctx, domain.NewUser(stamp, "u-1", "Alice", "alice@example.com"))
	require.NoError(t, err)

	org := domain.NewOrganisation(stamp, "org-1", "Acme")
	require.NoError(t, org.AddUser(stamp, "u-1"))
	_, err = uow.Organisations().Create(ctx, org)
	require.NoError(t, err)

	group := domain.NewGroup(stamp, "g-1", "Engineering", "", "org-1")
	require.NoError(t, group.AddUser(stamp, "u-1"))
	_, err = uow.Groups().Create(ctx, group)
	require.NoError(t, err)

	role := domain.NewRole(stamp, "r-1", "Administrator", "")
	require.NoError(t, role.AddUser(stamp, "u-1"))
	_, err = uow.Roles().Create(ctx, role)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	// Hard-deleting the user removes its membership rows everywhere, like
	// the database schema's ON DELETE CASCADE.
	uow = store.NewUnitOfWork()
	user, err := uow.Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	_, err = uow.Users().Delete(ctx, user)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	gotOrg, err := store.NewUnitOfWork().Organisations().GetByID(ctx, "org-1")
	require.NoError(t, err)
	assert.Empty(t, gotOrg.Users)

	gotGroup, err := store.NewUnitOfWork().Groups().GetByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, gotGroup.Users)

	gotRole, err := store.NewUnitOfWork().Roles().GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Empty(t, gotRole.Users)

	rel, err := store.NewUnitOfWork().OrganisationUsers().GetRelationship(ctx, "org-1", "u-1")
	require.NoError(t, err)
	assert.Nil(t, rel)
}

func TestHardDeletingOrganisationRemovesItsGroups(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	_, err := uow.Organisations().Create(ctx, domain.NewOrganisation(stamp, "org-1", "Acme"))
	require.NoError(t, err)
	_, err = uow.Groups().Create(ctx, domain.NewGroup(stamp, "g-1", "Engineering", "", "org-1"))
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	uow = store.NewUnitOfWork()
	org, err := uow.Organisations().GetByID(ctx, "org-1")
	require.NoError(t, err)
	_, err = uow.Organisations().Delete(ctx, org)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := store.NewUnitOfWork().Groups().GetByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveChangesRejectsDuplicateCursor(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	alice := domain.NewUser(stamp, "u-1", "Alice", "alice@example.com")
	bob := domain.NewUser(stamp, "u-2", "Bob", "bob@example.com")
	bob.Cursor = alice.Cursor

	uow := store.NewUnitOfWork()
	_, err := uow.Users().Create(ctx, alice)
	require.NoError(t, err)
	_, err = uow.Users().Create(ctx, bob)
	require.NoError(t, err)

	err = uow.SaveChanges(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageFailure))

	got, err := store.NewUnitOfWork().Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveChangesRejectsDuplicateMembershipPair(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	// Duplicate rows crafted directly on the collection, bypassing AddUser.
	org := domain.NewOrganisation(stamp, "org-1", "Acme")
	require.NoError(t, org.AddUser(stamp, "u-1"))
	org.Users = append(org.Users, org.Users[0])

	uow := store.NewUnitOfWork()
	_, err := uow.Organisations().Create(ctx, org)
	require.NoError(t, err)

	err = uow.SaveChanges(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageFailure))
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	org := domain.NewOrganisation(stamp, "org-1", "Acme")
	require.NoError(t, org.AddUser(stamp, "u-1"))

	uow := store.NewUnitOfWork()
	_, err := uow.Organisations().Create(ctx, org)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	read, err := store.NewUnitOfWork().Organisations().GetByID(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, read)

	// Mutating the returned copy must not leak into the store.
	read.Name = "Changed"
	read.Users[0].UserID = "hijacked"

	again, err := store.NewUnitOfWork().Organisations().GetByID(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.Name)
	assert.Equal(t, "u-1", again.Users[0].UserID)
}

func TestCursorPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	for _, name := range []string{"one", "two", "three", "four", "five"} {
		_, err := uow.Dummies().Create(ctx, domain.NewDummy(stamp, name, name))
		require.NoError(t, err)
	}
	require.NoError(t, uow.SaveChanges(ctx))

	repo := store.NewUnitOfWork().Dummies()

	first, err := repo.GetDummies(ctx, domain.DummyFilter{Page: domain.Pagination{Cursor: 0, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Less(t, first[0].Cursor, first[1].Cursor)

	second, err := repo.GetDummies(ctx, domain.DummyFilter{Page: domain.Pagination{Cursor: first[1].Cursor, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Greater(t, second[0].Cursor, first[1].Cursor)

	third, err := repo.GetDummies(ctx, domain.DummyFilter{Page: domain.Pagination{Cursor: second[1].Cursor, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, third, 1)

	// Walking the pages yields every record exactly once.
	seen := map[string]bool{}
	for _, page := range [][]*domain.Dummy{first, second, third} {
		for _, d := range page {
			assert.False(t, seen[d.ID])
			seen[d.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestTimestampWindowFilter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	stamp := newTestStamper()

	uow := store.NewUnitOfWork()
	d := domain.NewDummy(stamp, "d-1", "one")
	_, err := uow.Dummies().Create(ctx, d)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	past := d.DateModified.Add(-time.Minute)
	future := d.DateModified.Add(time.Minute)

	repo := store.NewUnitOfWork().Dummies()

	got, err := repo.GetDummies(ctx, domain.DummyFilter{
		Page:       domain.Pagination{PageSize: 10},
		Timestamps: domain.TimestampFilter{ModifiedAfter: &past, ModifiedBefore: &future},
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = repo.GetDummies(ctx, domain.DummyFilter{
		Page:       domain.Pagination{PageSize: 10},
		Timestamps: domain.TimestampFilter{ModifiedAfter: &future},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}
