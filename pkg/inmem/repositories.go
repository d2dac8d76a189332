package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/tendant/simple-acm/pkg/domain"
)

// matchText is the substring match used by optional name/description
// filters; nil means no restriction.
func matchText(filter *string, value string) bool {
	if filter == nil {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(*filter))
}

// memberIDs extracts the user ids of a membership collection for the
// batch validator's pair-uniqueness check.
func memberIDs[T any](members []T, id func(T) string) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = id(m)
	}
	return ids
}

func pageSize(p domain.Pagination) int {
	if p.PageSize <= 0 {
		return domain.DefaultPagination().PageSize
	}
	return p.PageSize
}

// userRepository implements domain.UserRepository against the store.
type userRepository struct {
	uow *unitOfWork
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	u, ok := r.uow.store.users[id]
	if !ok || u.Deleted() {
		return nil, nil
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *userRepository) GetUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	var users []*domain.User
	for _, u := range r.uow.store.users {
		if u.Deleted() {
			continue
		}
		if !matchText(filter.Name, u.Name) || !matchText(filter.Email, u.Email) {
			continue
		}
		if u.Cursor <= filter.Page.Cursor || !filter.Timestamps.Matches(u.DateModified) {
			continue
		}
		c := cloneUser(u)
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Cursor < users[j].Cursor })
	if n := pageSize(filter.Page); len(users) > n {
		users = users[:n]
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneUser(*user)
	r.uow.register(pendingOp{kind: opInsert, table: "users", id: user.ID, cursor: c.Cursor, apply: func(s *Store) {
		s.users[c.ID] = c
	}})
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneUser(*user)
	r.uow.register(pendingOp{kind: opUpdate, table: "users", id: user.ID, cursor: c.Cursor, apply: func(s *Store) {
		s.users[c.ID] = c
	}})
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := user.ID
	r.uow.register(pendingOp{kind: opDelete, table: "users", id: id, apply: func(s *Store) {
		delete(s.users, id)
		s.cascadeUserDelete(id)
	}})
	return user, nil
}

// organisationRepository implements domain.OrganisationRepository.
type organisationRepository struct {
	uow *unitOfWork
}

func (r *organisationRepository) GetByID(ctx context.Context, id string) (*domain.Organisation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	o, ok := r.uow.store.organisations[id]
	if !ok || o.Deleted() {
		return nil, nil
	}
	c := cloneOrganisation(o)
	return &c, nil
}

func (r *organisationRepository) GetOrganisations(ctx context.Context, filter domain.OrganisationFilter) ([]*domain.Organisation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	var organisations []*domain.Organisation
	for _, o := range r.uow.store.organisations {
		if o.Deleted() {
			continue
		}
		if !matchText(filter.Name, o.Name) {
			continue
		}
		if o.Cursor <= filter.Page.Cursor || !filter.Timestamps.Matches(o.DateModified) {
			continue
		}
		c := cloneOrganisation(o)
		organisations = append(organisations, &c)
	}
	sort.Slice(organisations, func(i, j int) bool { return organisations[i].Cursor < organisations[j].Cursor })
	if n := pageSize(filter.Page); len(organisations) > n {
		organisations = organisations[:n]
	}
	return organisations, nil
}

func (r *organisationRepository) Create(ctx context.Context, organisation *domain.Organisation) (*domain.Organisation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneOrganisation(*organisation)
	members := memberIDs(c.Users, func(m domain.OrganisationUser) string { return m.UserID })
	r.uow.register(pendingOp{kind: opInsert, table: "organisations", id: organisation.ID, cursor: c.Cursor, members: members, apply: func(s *Store) {
		s.organisations[c.ID] = c
	}})
	return organisation, nil
}

func (r *organisationRepository) Update(ctx context.Context, organisation *domain.Organisation) (*domain.Organisation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneOrganisation(*organisation)
	members := memberIDs(c.Users, func(m domain.OrganisationUser) string { return m.UserID })
	r.uow.register(pendingOp{kind: opUpdate, table: "organisations", id: organisation.ID, cursor: c.Cursor, members: members, apply: func(s *Store) {
		s.organisations[c.ID] = c
	}})
	return organisation, nil
}

func (r *organisationRepository) Delete(ctx context.Context, organisation *domain.Organisation) (*domain.Organisation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := organisation.ID
	r.uow.register(pendingOp{kind: opDelete, table: "organisations", id: id, apply: func(s *Store) {
		delete(s.organisations, id)
		s.cascadeOrganisationDelete(id)
	}})
	return organisation, nil
}

// organisationUserRepository resolves membership records for cross-aggregate
// checks. Read-only; membership writes flow through the organisation.
type organisationUserRepository struct {
	uow *unitOfWork
}

func (r *organisationUserRepository) GetRelationship(ctx context.Context, organisationID, userID string) (*domain.OrganisationUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	o, ok := r.uow.store.organisations[organisationID]
	if !ok || o.Deleted() {
		return nil, nil
	}
	for _, m := range o.Users {
		if m.UserID == userID {
			rel := m
			return &rel, nil
		}
	}
	return nil, nil
}

// groupRepository implements domain.GroupRepository.
type groupRepository struct {
	uow *unitOfWork
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	g, ok := r.uow.store.groups[id]
	if !ok || g.Deleted() {
		return nil, nil
	}
	c := cloneGroup(g)
	return &c, nil
}

func (r *groupRepository) GetGroups(ctx context.Context, filter domain.GroupFilter) ([]*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	var groups []*domain.Group
	for _, g := range r.uow.store.groups {
		if g.Deleted() {
			continue
		}
		if filter.OrganisationID != nil && g.OrganisationID != *filter.OrganisationID {
			continue
		}
		if !matchText(filter.Name, g.Name) {
			continue
		}
		if g.Cursor <= filter.Page.Cursor || !filter.Timestamps.Matches(g.DateModified) {
			continue
		}
		c := cloneGroup(g)
		groups = append(groups, &c)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Cursor < groups[j].Cursor })
	if n := pageSize(filter.Page); len(groups) > n {
		groups = groups[:n]
	}
	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneGroup(*group)
	members := memberIDs(c.Users, func(m domain.GroupUser) string { return m.UserID })
	r.uow.register(pendingOp{kind: opInsert, table: "groups", id: group.ID, cursor: c.Cursor, members: members, apply: func(s *Store) {
		s.groups[c.ID] = c
	}})
	return group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneGroup(*group)
	members := memberIDs(c.Users, func(m domain.GroupUser) string { return m.UserID })
	r.uow.register(pendingOp{kind: opUpdate, table: "groups", id: group.ID, cursor: c.Cursor, members: members, apply: func(s *Store) {
		s.groups[c.ID] = c
	}})
	return group, nil
}

func (r *groupRepository) Delete(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := group.ID
	r.uow.register(pendingOp{kind: opDelete, table: "groups", id: id, apply: func(s *Store) {
		delete(s.groups, id)
	}})
	return group, nil
}

// roleRepository implements domain.RoleRepository.
type roleRepository struct {
	uow *unitOfWork
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	role, ok := r.uow.store.roles[id]
	if !ok || role.Deleted() {
		return nil, nil
	}
	c := cloneRole(role)
	return &c, nil
}

func (r *roleRepository) GetRoles(ctx context.Context, filter domain.RoleFilter) ([]*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	var roles []*domain.Role
	for _, role := range r.uow.store.roles {
		if role.Deleted() {
			continue
		}
		if filter.UserID != nil && !role.HasUser(*filter.UserID) {
			continue
		}
		if !matchText(filter.Name, role.Name) || !matchText(filter.Description, role.Description) {
			continue
		}
		if role.Cursor <= filter.Page.Cursor || !filter.Timestamps.Matches(role.DateModified) {
			continue
		}
		c := cloneRole(role)
		roles = append(roles, &c)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Cursor < roles[j].Cursor })
	if n := pageSize(filter.Page); len(roles) > n {
		roles = roles[:n]
	}
	return roles, nil
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneRole(*role)
	members := memberIDs(c.Users, func(m domain.RoleUser) string { return m.UserID })
	r.uow.register(pendingOp{kind: opInsert, table: "roles", id: role.ID, cursor: c.Cursor, members: members, apply: func(s *Store) {
		s.roles[c.ID] = c
	}})
	return role, nil
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneRole(*role)
	members := memberIDs(c.Users, func(m domain.RoleUser) string { return m.UserID })
	r.uow.register(pendingOp{kind: opUpdate, table: "roles", id: role.ID, cursor: c.Cursor, members: members, apply: func(s *Store) {
		s.roles[c.ID] = c
	}})
	return role, nil
}

func (r *roleRepository) Delete(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := role.ID
	r.uow.register(pendingOp{kind: opDelete, table: "roles", id: id, apply: func(s *Store) {
		delete(s.roles, id)
	}})
	return role, nil
}

// dummyRepository implements domain.DummyRepository.
type dummyRepository struct {
	uow *unitOfWork
}

func (r *dummyRepository) GetByID(ctx context.Context, id string) (*domain.Dummy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	d, ok := r.uow.store.dummies[id]
	if !ok || d.Deleted() {
		return nil, nil
	}
	c := cloneDummy(d)
	return &c, nil
}

func (r *dummyRepository) GetDummies(ctx context.Context, filter domain.DummyFilter) ([]*domain.Dummy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	var dummies []*domain.Dummy
	for _, d := range r.uow.store.dummies {
		if d.Deleted() {
			continue
		}
		if !matchText(filter.Name, d.Name) {
			continue
		}
		if d.Cursor <= filter.Page.Cursor || !filter.Timestamps.Matches(d.DateModified) {
			continue
		}
		c := cloneDummy(d)
		dummies = append(dummies, &c)
	}
	sort.Slice(dummies, func(i, j int) bool { return dummies[i].Cursor < dummies[j].Cursor })
	if n := pageSize(filter.Page); len(dummies) > n {
		dummies = dummies[:n]
	}
	return dummies, nil
}

func (r *dummyRepository) Create(ctx context.Context, dummy *domain.Dummy) (*domain.Dummy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneDummy(*dummy)
	r.uow.register(pendingOp{kind: opInsert, table: "dummies", id: dummy.ID, cursor: c.Cursor, apply: func(s *Store) {
		s.dummies[c.ID] = c
	}})
	return dummy, nil
}

func (r *dummyRepository) Update(ctx context.Context, dummy *domain.Dummy) (*domain.Dummy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cloneDummy(*dummy)
	r.uow.register(pendingOp{kind: opUpdate, table: "dummies", id: dummy.ID, cursor: c.Cursor, apply: func(s *Store) {
		s.dummies[c.ID] = c
	}})
	return dummy, nil
}

func (r *dummyRepository) Delete(ctx context.Context, dummy *domain.Dummy) (*domain.Dummy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := dummy.ID
	r.uow.register(pendingOp{kind: opDelete, table: "dummies", id: id, apply: func(s *Store) {
		delete(s.dummies, id)
	}})
	return dummy, nil
}
