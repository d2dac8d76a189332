package inmem

import (
	"context"
	"fmt"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

// pendingOp is one registered mutation: enough metadata to validate the
// batch up front, plus the map write to run once validation passes.
type pendingOp struct {
	kind    opKind
	table   string
	id      string
	cursor  int64
	members []string
	apply   func(s *Store)
}

// unitOfWork records intended operations as they are registered through its
// repositories and applies them under one store write lock on SaveChanges.
// Repositories are created lazily and cached for the unit's lifetime.
type unitOfWork struct {
	store *Store

	users             *userRepository
	organisations     *organisationRepository
	organisationUsers *organisationUserRepository
	groups            *groupRepository
	roles             *roleRepository
	dummies           *dummyRepository

	pending []pendingOp
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

func (u *unitOfWork) register(op pendingOp) {
	u.pending = append(u.pending, op)
}

// SaveChanges applies every pending operation under one write lock. The
// batch is validated against the live maps before any operation runs, so a
// constraint violation mid-batch cannot leave a partial commit behind.
func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if len(u.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if err := u.store.validate(u.pending); err != nil {
		return errors.StorageFailure(err)
	}
	for _, op := range u.pending {
		op.apply(u.store)
	}
	u.pending = nil
	return nil
}

// validate replays the batch against a snapshot of existing IDs and
// cursors, enforcing the constraints the database schema would: unique
// aggregate IDs, unique cursors per table, and at most one membership row
// per (owner, user) pair.
func (s *Store) validate(ops []pendingOp) error {
	exists := map[string]map[string]bool{
		"users":         idSet(s.users),
		"organisations": idSet(s.organisations),
		"groups":        idSet(s.groups),
		"roles":         idSet(s.roles),
		"dummies":       idSet(s.dummies),
	}
	cursors := map[string]map[int64]string{
		"users":         cursorSet(s.users, func(u domain.User) int64 { return u.Cursor }),
		"organisations": cursorSet(s.organisations, func(o domain.Organisation) int64 { return o.Cursor }),
		"groups":        cursorSet(s.groups, func(g domain.Group) int64 { return g.Cursor }),
		"roles":         cursorSet(s.roles, func(r domain.Role) int64 { return r.Cursor }),
		"dummies":       cursorSet(s.dummies, func(d domain.Dummy) int64 { return d.Cursor }),
	}

	for _, op := range ops {
		ids := exists[op.table]
		switch op.kind {
		case opInsert:
			if ids[op.id] {
				return fmt.Errorf("duplicate %s id %s", op.table, op.id)
			}
			ids[op.id] = true
		case opUpdate:
			if !ids[op.id] {
				return fmt.Errorf("%s id %s does not exist", op.table, op.id)
			}
		case opDelete:
			delete(ids, op.id)
			continue
		}

		if owner, used := cursors[op.table][op.cursor]; used && owner != op.id {
			return fmt.Errorf("duplicate %s cursor %d", op.table, op.cursor)
		}
		cursors[op.table][op.cursor] = op.id

		seen := make(map[string]bool, len(op.members))
		for _, userID := range op.members {
			if seen[userID] {
				return fmt.Errorf("duplicate membership pair (%s, %s)", op.id, userID)
			}
			seen[userID] = true
		}
	}
	return nil
}

func idSet[T any](m map[string]T) map[string]bool {
	ids := make(map[string]bool, len(m))
	for id := range m {
		ids[id] = true
	}
	return ids
}

func cursorSet[T any](m map[string]T, cursor func(T) int64) map[int64]string {
	cs := make(map[int64]string, len(m))
	for id, v := range m {
		cs[cursor(v)] = id
	}
	return cs
}
