package domain

import "context"

// UnitOfWork scopes one request's repository access and gives it a single
// atomic commit point. Each repository accessor creates its repository on
// first use and returns the same instance on every later call. SaveChanges
// commits every mutation registered through those repositories; with no
// pending mutations it is a no-op and must not fail. Partial commits are
// not permitted.
type UnitOfWork interface {
	Users() UserRepository
	Organisations() OrganisationRepository
	OrganisationUsers() OrganisationUserRepository
	Groups() GroupRepository
	Roles() RoleRepository
	Dummies() DummyRepository

	SaveChanges(ctx context.Context) error
}

// UnitOfWorkFactory hands each request its own UnitOfWork.
type UnitOfWorkFactory interface {
	NewUnitOfWork() UnitOfWork
}
