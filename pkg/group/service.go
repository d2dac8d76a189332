package group

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/utils"
	"github.com/tendant/simple-acm/pkg/validation"
)

// GroupService handles every group command and query. Groups are scoped to
// one organisation and may only hold users that belong to it.
type GroupService struct {
	uow      domain.UnitOfWorkFactory
	stamp    domain.Stamper
	ids      domain.IDGenerator
	validate *validation.Validator
}

// NewGroupService creates a new group service.
func NewGroupService(uow domain.UnitOfWorkFactory, stamp domain.Stamper, ids domain.IDGenerator, validate *validation.Validator) *GroupService {
	return &GroupService{
		uow:      uow,
		stamp:    stamp,
		ids:      ids,
		validate: validate,
	}
}

// CreateGroup creates a group inside an existing organisation.
func (s *GroupService) CreateGroup(ctx context.Context, cmd CreateGroupCommand) (*domain.Group, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	organisation, err := uow.Organisations().GetByID(ctx, cmd.OrganisationID)
	if err != nil {
		return nil, err
	}
	if organisation == nil {
		return nil, errors.NotFound("Organisation", cmd.OrganisationID)
	}

	group := domain.NewGroup(s.stamp, s.ids.NewID(), cmd.Name, cmd.Description, organisation.ID)
	if _, err := uow.Groups().Create(ctx, group); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("created group", "id", group.ID, "organisation_id", group.OrganisationID, "snapshot", utils.JSONSnapshot(group))
	return group, nil
}

// UpdateGroup renames or redescribes an existing group.
func (s *GroupService) UpdateGroup(ctx context.Context, cmd UpdateGroupCommand) (*domain.Group, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	group, err := uow.Groups().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NotFound("Group", cmd.ID)
	}

	group.Update(s.stamp, cmd.Name, cmd.Description)
	if _, err := uow.Groups().Update(ctx, group); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("updated group", "id", group.ID, "snapshot", utils.JSONSnapshot(group))
	return group, nil
}

// DeleteGroup soft-deletes a group. The record stays in storage but drops
// out of every read path.
func (s *GroupService) DeleteGroup(ctx context.Context, cmd DeleteGroupCommand) (*domain.Group, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	group, err := uow.Groups().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NotFound("Group", cmd.ID)
	}

	group.SoftDelete(s.stamp)
	if _, err := uow.Groups().Update(ctx, group); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("deleted group", "id", group.ID, "snapshot", utils.JSONSnapshot(group))
	return group, nil
}

// GetGroup retrieves a group by id.
func (s *GroupService) GetGroup(ctx context.Context, query GetGroupQuery) (*domain.Group, error) {
	uow := s.uow.NewUnitOfWork()
	group, err := uow.Groups().GetByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NotFound("Group", query.ID)
	}
	return group, nil
}

// GetGroups retrieves a filtered, paginated group collection.
func (s *GroupService) GetGroups(ctx context.Context, query GetGroupsQuery) ([]*domain.Group, error) {
	if err := s.validate.Query(query); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	return uow.Groups().GetGroups(ctx, domain.GroupFilter{
		OrganisationID: query.OrganisationID,
		Name:           query.Name,
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

// AddGroupMember adds a user to a group. Checks run in a fixed order: group
// existence, duplicate membership, user existence, and finally the rule
// that the user must belong to the group's organisation.
func (s *GroupService) AddGroupMember(ctx context.Context, cmd AddGroupMemberCommand) (*domain.Group, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	group, err := uow.Groups().GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NotFound("Group", cmd.GroupID)
	}
	if group.HasUser(cmd.UserID) {
		return nil, errors.Conflict("Membership", "user "+cmd.UserID+" is already a member of group "+group.ID)
	}

	user, err := uow.Users().GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", cmd.UserID)
	}

	relationship, err := uow.OrganisationUsers().GetRelationship(ctx, group.OrganisationID, user.ID)
	if err != nil {
		return nil, err
	}
	if relationship == nil {
		return nil, errors.CrossOrganisationMembership(group.ID, group.OrganisationID, user.ID)
	}

	if err := group.AddUser(s.stamp, user.ID); err != nil {
		return nil, err
	}
	if _, err := uow.Groups().Update(ctx, group); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("added group member", "id", group.ID, "user_id", user.ID, "snapshot", utils.JSONSnapshot(group))
	return group, nil
}

// RemoveGroupMember removes a user from a group.
func (s *GroupService) RemoveGroupMember(ctx context.Context, cmd RemoveGroupMemberCommand) (*domain.Group, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	group, err := uow.Groups().GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NotFound("Group", cmd.GroupID)
	}

	if err := group.RemoveUser(s.stamp, cmd.UserID); err != nil {
		return nil, err
	}
	if _, err := uow.Groups().Update(ctx, group); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("removed group member", "id", group.ID, "user_id", cmd.UserID, "snapshot", utils.JSONSnapshot(group))
	return group, nil
}
