package pgstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tendant/simple-acm/pkg/domain"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "acm_db"
	dbUser := "acm"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "acm_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func newTestStore(t *testing.T) (*Store, domain.Stamper, func()) {
	pool, cleanup := setupTestDatabase(t)
	store, err := NewStore(pool)
	require.NoError(t, err)
	stamp := domain.NewStamper(domain.SystemClock{}, domain.NewCounter(0))
	return store, stamp, cleanup
}

func TestUserRoundTrip(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	user := domain.NewUser(stamp, "u-1", "Alice", "alice@example.com")
	_, err := uow.Users().Create(ctx, user)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := store.NewUnitOfWork().Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, user.Cursor, got.Cursor)
	require.NotNil(t, got.DateLastSynchronised)

	// Absent id reads as nil, nil.
	missing, err := store.NewUnitOfWork().Users().GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSoftDeletedRowsAreFiltered(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	dummy := domain.NewDummy(stamp, "d-1", "one")
	_, err := uow.Dummies().Create(ctx, dummy)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	dummy.SoftDelete(stamp)
	uow = store.NewUnitOfWork()
	_, err = uow.Dummies().Update(ctx, dummy)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := store.NewUnitOfWork().Dummies().GetByID(ctx, "d-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The row is still in the table.
	var count int
	err = store.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dummies WHERE id = 'd-1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOrganisationMembershipRoundTrip(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	user := domain.NewUser(stamp, "u-1", "Alice", "alice@example.com")
	_, err := uow.Users().Create(ctx, user)
	require.NoError(t, err)

	org := domain.NewOrganisation(stamp, "org-1", "Acme")
	require.NoError(t, org.AddUser(stamp, "u-1"))
	_, err = uow.Organisations().Create(ctx, org)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := store.NewUnitOfWork().Organisations().GetByID(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Users, 1)
	assert.Equal(t, "u-1", got.Users[0].UserID)

	rel, err := store.NewUnitOfWork().OrganisationUsers().GetRelationship(ctx, "org-1", "u-1")
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, "org-1", rel.OrganisationID)

	// Remove the member and update: the join row goes away.
	require.NoError(t, got.RemoveUser(stamp, "u-1"))
	uow = store.NewUnitOfWork()
	_, err = uow.Organisations().Update(ctx, got)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	rel, err = store.NewUnitOfWork().OrganisationUsers().GetRelationship(ctx, "org-1", "u-1")
	require.NoError(t, err)
	assert.Nil(t, rel)
}

func TestSaveChangesRollsBackOnFailure(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	_, err := uow.Users().Create(ctx, domain.NewUser(stamp, "u-1", "Alice", "alice@example.com"))
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	// Second batch: a valid insert plus a duplicate primary key. The whole
	// transaction must roll back.
	uow = store.NewUnitOfWork()
	_, err = uow.Users().Create(ctx, domain.NewUser(stamp, "u-2", "Bob", "bob@example.com"))
	require.NoError(t, err)
	_, err = uow.Users().Create(ctx, domain.NewUser(stamp, "u-1", "Imposter", "x@example.com"))
	require.NoError(t, err)

	err = uow.SaveChanges(ctx)
	require.Error(t, err)

	got, err := store.NewUnitOfWork().Users().GetByID(ctx, "u-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCollectionQueryFiltersAndPages(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	for _, name := range []string{"Engineering", "Enablement", "Sales"} {
		role := domain.NewRole(stamp, name, name, "")
		_, err := uow.Roles().Create(ctx, role)
		require.NoError(t, err)
	}
	require.NoError(t, uow.SaveChanges(ctx))

	repo := store.NewUnitOfWork().Roles()

	// Case-insensitive substring match on name.
	name := "en"
	matched, err := repo.GetRoles(ctx, domain.RoleFilter{
		Name: &name,
		Page: domain.Pagination{Cursor: 0, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	// Cursor pagination walks in ascending order without repeats.
	first, err := repo.GetRoles(ctx, domain.RoleFilter{Page: domain.Pagination{Cursor: 0, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Less(t, first[0].Cursor, first[1].Cursor)

	rest, err := repo.GetRoles(ctx, domain.RoleFilter{Page: domain.Pagination{Cursor: first[1].Cursor, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Greater(t, rest[0].Cursor, first[1].Cursor)
}

func TestContainsMatchesWildcardsLiterally(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	// "merch" would match an unescaped "e_c" pattern; "Progress 50x" would
	// match an unescaped "50%".
	for _, name := range []string{"Progress 50%", "Progress 50x", "snake_case", "merch"} {
		_, err := uow.Roles().Create(ctx, domain.NewRole(stamp, name, name, ""))
		require.NoError(t, err)
	}
	require.NoError(t, uow.SaveChanges(ctx))

	repo := store.NewUnitOfWork().Roles()

	// "%" in a filter is a literal percent sign, not a wildcard.
	name := "50%"
	matched, err := repo.GetRoles(ctx, domain.RoleFilter{
		Name: &name,
		Page: domain.Pagination{Cursor: 0, PageSize: 10},
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Progress 50%", matched[0].Name)

	// Same for "_": it must not match arbitrary single characters.
	name = "e_c"
	matched, err = repo.GetRoles(ctx, domain.RoleFilter{
		Name: &name,
		Page: domain.Pagination{Cursor: 0, PageSize: 10},
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "snake_case", matched[0].Name)
}

func TestMaxCursorSeedsSequence(t *testing.T) {
	store, stamp, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	max, err := store.MaxCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), max)

	uow := store.NewUnitOfWork()
	dummy := domain.NewDummy(stamp, "d-1", "one")
	_, err = uow.Dummies().Create(ctx, dummy)
	require.NoError(t, err)
	require.NoError(t, uow.SaveChanges(ctx))

	max, err = store.MaxCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, dummy.Cursor, max)
}
