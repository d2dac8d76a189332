package role

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/utils"
	"github.com/tendant/simple-acm/pkg/validation"
)

// RoleService handles every role command and query. Each invocation runs in
// its own unit of work with a single commit point.
type RoleService struct {
	uow      domain.UnitOfWorkFactory
	stamp    domain.Stamper
	ids      domain.IDGenerator
	validate *validation.Validator
}

// NewRoleService creates a new role service. The validator is a required
// collaborator; a mutating handler cannot exist without one.
func NewRoleService(uow domain.UnitOfWorkFactory, stamp domain.Stamper, ids domain.IDGenerator, validate *validation.Validator) *RoleService {
	return &RoleService{
		uow:      uow,
		stamp:    stamp,
		ids:      ids,
		validate: validate,
	}
}

// CreateRole creates a new role.
func (s *RoleService) CreateRole(ctx context.Context, cmd CreateRoleCommand) (*domain.Role, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	role := domain.NewRole(s.stamp, s.ids.NewID(), cmd.Name, cmd.Description)
	if _, err := uow.Roles().Create(ctx, role); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("created role", "id", role.ID, "snapshot", utils.JSONSnapshot(role))
	return role, nil
}

// UpdateRole replaces an existing role's attributes.
func (s *RoleService) UpdateRole(ctx context.Context, cmd UpdateRoleCommand) (*domain.Role, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	role, err := uow.Roles().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("Role", cmd.ID)
	}

	role.Update(s.stamp, cmd.Name, cmd.Description)
	if _, err := uow.Roles().Update(ctx, role); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("updated role", "id", role.ID, "snapshot", utils.JSONSnapshot(role))
	return role, nil
}

// DeleteRole soft-deletes a role and returns its final state.
func (s *RoleService) DeleteRole(ctx context.Context, cmd DeleteRoleCommand) (*domain.Role, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	role, err := uow.Roles().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("Role", cmd.ID)
	}

	role.SoftDelete(s.stamp)
	if _, err := uow.Roles().Update(ctx, role); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("deleted role", "id", role.ID, "snapshot", utils.JSONSnapshot(role))
	return role, nil
}

// GetRole retrieves a role by id.
func (s *RoleService) GetRole(ctx context.Context, query GetRoleQuery) (*domain.Role, error) {
	uow := s.uow.NewUnitOfWork()
	role, err := uow.Roles().GetByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("Role", query.ID)
	}
	return role, nil
}

// GetRoles retrieves a filtered, paginated role collection.
func (s *RoleService) GetRoles(ctx context.Context, query GetRolesQuery) ([]*domain.Role, error) {
	if err := s.validate.Query(query); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	return uow.Roles().GetRoles(ctx, domain.RoleFilter{
		UserID:      query.UserID,
		Name:        query.Name,
		Description: query.Description,
		Page: domain.Pagination{
			Cursor:   query.Cursor,
			PageSize: query.PageSize,
		},
		Timestamps: domain.TimestampFilter{
			ModifiedAfter:  query.ModifiedAfter,
			ModifiedBefore: query.ModifiedBefore,
		},
	})
}

// AddRoleMember assigns a role to a user. Checks run in a fixed order:
// role existence, duplicate membership, user existence.
func (s *RoleService) AddRoleMember(ctx context.Context, cmd AddRoleMemberCommand) (*domain.Role, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	role, err := uow.Roles().GetByID(ctx, cmd.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("Role", cmd.RoleID)
	}
	if role.HasUser(cmd.UserID) {
		return nil, errors.Conflict("Membership", "user "+cmd.UserID+" already holds role "+role.ID)
	}

	user, err := uow.Users().GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", cmd.UserID)
	}

	if err := role.AddUser(s.stamp, user.ID); err != nil {
		return nil, err
	}
	if _, err := uow.Roles().Update(ctx, role); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("added role member", "id", role.ID, "user_id", user.ID, "snapshot", utils.JSONSnapshot(role))
	return role, nil
}

// RemoveRoleMember withdraws a role from a user.
func (s *RoleService) RemoveRoleMember(ctx context.Context, cmd RemoveRoleMemberCommand) (*domain.Role, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	role, err := uow.Roles().GetByID(ctx, cmd.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("Role", cmd.RoleID)
	}

	if err := role.RemoveUser(s.stamp, cmd.UserID); err != nil {
		return nil, err
	}
	if _, err := uow.Roles().Update(ctx, role); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("removed role member", "id", role.ID, "user_id", cmd.UserID, "snapshot", utils.JSONSnapshot(role))
	return role, nil
}
