// Package inmem implements the repository and unit-of-work contracts
// against in-memory maps. This is useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Service tests that need no database setup
//
// Note: All data is lost when the process stops. For production, use
// pkg/pgstore with PostgreSQL.
package inmem

import (
	"sync"

	"github.com/tendant/simple-acm/pkg/domain"
)

// Store holds every aggregate's records behind one RWMutex. Reads hand out
// copies; writes only happen when a unit of work commits.
type Store struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	organisations map[string]domain.Organisation
	groups        map[string]domain.Group
	roles         map[string]domain.Role
	dummies       map[string]domain.Dummy
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]domain.User),
		organisations: make(map[string]domain.Organisation),
		groups:        make(map[string]domain.Group),
		roles:         make(map[string]domain.Role),
		dummies:       make(map[string]domain.Dummy),
	}
}

// NewUnitOfWork implements domain.UnitOfWorkFactory.
func (s *Store) NewUnitOfWork() domain.UnitOfWork {
	return &unitOfWork{store: s}
}

// cascadeUserDelete mirrors the database schema's ON DELETE CASCADE:
// membership rows referencing a hard-deleted user are removed from every
// owning aggregate. Caller holds the write lock.
func (s *Store) cascadeUserDelete(userID string) {
	for id, o := range s.organisations {
		if kept := keepMembers(o.Users, func(m domain.OrganisationUser) bool { return m.UserID != userID }); len(kept) != len(o.Users) {
			o.Users = kept
			s.organisations[id] = o
		}
	}
	for id, g := range s.groups {
		if kept := keepMembers(g.Users, func(m domain.GroupUser) bool { return m.UserID != userID }); len(kept) != len(g.Users) {
			g.Users = kept
			s.groups[id] = g
		}
	}
	for id, r := range s.roles {
		if kept := keepMembers(r.Users, func(m domain.RoleUser) bool { return m.UserID != userID }); len(kept) != len(r.Users) {
			r.Users = kept
			s.roles[id] = r
		}
	}
}

// cascadeOrganisationDelete removes the groups owned by a hard-deleted
// organisation, as the schema's foreign key would. The organisation's own
// membership rows vanish with its record. Caller holds the write lock.
func (s *Store) cascadeOrganisationDelete(organisationID string) {
	for id, g := range s.groups {
		if g.OrganisationID == organisationID {
			delete(s.groups, id)
		}
	}
}

func keepMembers[T any](members []T, keep func(T) bool) []T {
	var kept []T
	for _, m := range members {
		if keep(m) {
			kept = append(kept, m)
		}
	}
	return kept
}

// Copy helpers. Membership slices must not alias the stored records or a
// caller's in-flight mutation would leak into the store before commit.

func cloneUser(u domain.User) domain.User {
	return u
}

func cloneOrganisation(o domain.Organisation) domain.Organisation {
	c := o
	c.Users = append([]domain.OrganisationUser(nil), o.Users...)
	return c
}

func cloneGroup(g domain.Group) domain.Group {
	c := g
	c.Users = append([]domain.GroupUser(nil), g.Users...)
	return c
}

func cloneRole(r domain.Role) domain.Role {
	c := r
	c.Users = append([]domain.RoleUser(nil), r.Users...)
	return c
}

func cloneDummy(d domain.Dummy) domain.Dummy {
	return d
}
