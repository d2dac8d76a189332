package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
)

// Store wraps a pgx connection pool and hands out units of work.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &Store{pool: pool}, nil
}

// NewUnitOfWork implements domain.UnitOfWorkFactory.
func (s *Store) NewUnitOfWork() domain.UnitOfWork {
	return &unitOfWork{pool: s.pool}
}

// MaxCursor returns the highest cursor value across every aggregate table.
// The process-wide cursor sequence is seeded from it at startup so new
// stamps continue above everything already persisted.
func (s *Store) MaxCursor(ctx context.Context) (int64, error) {
	const query = `
		SELECT GREATEST(
			COALESCE((SELECT MAX(cursor) FROM users), 0),
			COALESCE((SELECT MAX(cursor) FROM organisations), 0),
			COALESCE((SELECT MAX(cursor) FROM "groups"), 0),
			COALESCE((SELECT MAX(cursor) FROM roles), 0),
			COALESCE((SELECT MAX(cursor) FROM dummies), 0)
		)
	`
	var max int64
	if err := s.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max cursor: %w", err)
	}
	return max, nil
}

// pgOp is one registered mutation, replayed inside the commit transaction.
type pgOp func(ctx context.Context, tx pgx.Tx) error

// unitOfWork runs reads directly against the pool and queues writes until
// SaveChanges wraps them in a single transaction. Repositories are created
// lazily and cached for the unit's lifetime.
type unitOfWork struct {
	pool *pgxpool.Pool

	users             *userRepository
	organisations     *organisationRepository
	organisationUsers *organisationUserRepository
	groups            *groupRepository
	roles             *roleRepository
	dummies           *dummyRepository

	pending []pgOp
}

func (u *unitOfWork) Users() domain.UserRepository {
	if u.users == nil {
		u.users = &userRepository{uow: u}
	}
	return u.users
}

func (u *unitOfWork) Organisations() domain.OrganisationRepository {
	if u.organisations == nil {
		u.organisations = &organisationRepository{uow: u}
	}
	return u.organisations
}

func (u *unitOfWork) OrganisationUsers() domain.OrganisationUserRepository {
	if u.organisationUsers == nil {
		u.organisationUsers = &organisationUserRepository{uow: u}
	}
	return u.organisationUsers
}

func (u *unitOfWork) Groups() domain.GroupRepository {
	if u.groups == nil {
		u.groups = &groupRepository{uow: u}
	}
	return u.groups
}

func (u *unitOfWork) Roles() domain.RoleRepository {
	if u.roles == nil {
		u.roles = &roleRepository{uow: u}
	}
	return u.roles
}

func (u *unitOfWork) Dummies() domain.DummyRepository {
	if u.dummies == nil {
		u.dummies = &dummyRepository{uow: u}
	}
	return u.dummies
}

func (u *unitOfWork) register(op pgOp) {
	u.pending = append(u.pending, op)
}

// SaveChanges replays every registered mutation inside one transaction.
// With nothing pending it is a no-op. Any failure rolls the whole batch
// back and surfaces as a storage failure.
func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if len(u.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return errors.StorageFailure(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	for _, op := range u.pending {
		if err := op(ctx, tx); err != nil {
			return errors.StorageFailure(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.StorageFailure(fmt.Errorf("failed to commit transaction: %w", err))
	}
	u.pending = nil
	return nil
}

// collectionQuery accumulates WHERE predicates with positional arguments.
type collectionQuery struct {
	sql  string
	args []any
}

func (q *collectionQuery) where(predicate string, arg any) {
	q.args = append(q.args, arg)
	q.sql += fmt.Sprintf(" AND "+predicate, len(q.args))
}

// page appends the shared cursor-window tail: strictly-after-cursor
// predicate, ascending cursor order, page-size limit.
func (q *collectionQuery) page(p domain.Pagination) {
	q.where("cursor > $%d", p.Cursor)
	size := p.PageSize
	if size <= 0 {
		size = domain.DefaultPagination().PageSize
	}
	q.args = append(q.args, size)
	q.sql += fmt.Sprintf(" ORDER BY cursor ASC LIMIT $%d", len(q.args))
}

// timestamps appends the optional modified-window predicates.
func (q *collectionQuery) timestamps(f domain.TimestampFilter) {
	if f.ModifiedAfter != nil {
		q.where("date_modified > $%d", *f.ModifiedAfter)
	}
	if f.ModifiedBefore != nil {
		q.where("date_modified < $%d", *f.ModifiedBefore)
	}
}

// likeEscaper neutralises LIKE pattern metacharacters so filter values
// always match as literal substrings.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains appends a case-insensitive substring predicate when the filter
// is set.
func (q *collectionQuery) contains(column string, filter *string) {
	if filter != nil {
		q.where(column+" ILIKE '%%' || $%d || '%%'", likeEscaper.Replace(*filter))
	}
}
