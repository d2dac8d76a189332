package organisation

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/utils"
	"github.com/tendant/simple-acm/pkg/validation"
)

// OrganisationService handles every organisation command and query,
// membership included. The organisation side owns the membership
// collection; users are never mutated directly.
type OrganisationService struct {
	uow      domain.UnitOfWorkFactory
	stamp    domain.Stamper
	validate *validation.Validator
}

// NewOrganisationService creates a new organisation service.
func NewOrganisationService(uow domain.UnitOfWorkFactory, stamp domain.Stamper, validate *validation.Validator) *OrganisationService {
	return &OrganisationService{
		uow:      uow,
		stamp:    stamp,
		validate: validate,
	}
}

// SynchroniseOrganisation upserts an organisation under its natural id.
func (s *OrganisationService) SynchroniseOrganisation(ctx context.Context, cmd SynchroniseOrganisationCommand) (*domain.Organisation, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	organisation, err := uow.Organisations().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if organisation != nil {
		organisation.Synchronise(s.stamp, cmd.Name)
		if _, err := uow.Organisations().Update(ctx, organisation); err != nil {
			return nil, err
		}
	} else {
		organisation = domain.NewOrganisation(s.stamp, cmd.ID, cmd.Name)
		if _, err := uow.Organisations().Create(ctx, organisation); err != nil {
			return nil, err
		}
	}

	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("synchronised organisation", "id", organisation.ID, "snapshot", utils.JSONSnapshot(organisation))
	return organisation, nil
}

// DeleteOrganisation hard-deletes an organisation and returns its final state.
func (s *OrganisationService) DeleteOrganisation(ctx context.Context, cmd DeleteOrganisationCommand) (*domain.Organisation, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	organisation, err := uow.Organisations().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if organisation == nil {
		return nil, errors.NotFound("Organisation", cmd.ID)
	}

	if _, err := uow.Organisations().Delete(ctx, organisation); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("deleted organisation", "id", organisation.ID, "snapshot", utils.JSONSnapshot(organisation))
	return organisation, nil
}

// GetOrganisation retrieves an organisation by id.
func (s *OrganisationService) GetOrganisation(ctx context.Context, query GetOrganisationQuery) (*domain.Organisation, error) {
	uow := s.uow.NewUnitOfWork()
	organisation, err := uow.Organisations().GetByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if organisation == nil {
		return nil, errors.NotFound("Organisation", query.ID)
	}
	return organisation, nil
}

// GetOrganisations retrieves a filtered, paginated collection.
func (s *OrganisationService) GetOrganisations(ctx context.Context, query GetOrganisationsQuery) ([]*domain.Organisation, error) {
	if err := s.validate.Query(query); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	return uow.Organisations().GetOrganisations(ctx, domain.OrganisationFilter{
		Name: query.Name,
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

// AddOrganisationMember adds a user to an organisation. Checks run in a
// fixed order: organisation existence, duplicate membership, user existence.
func (s *OrganisationService) AddOrganisationMember(ctx context.Context, cmd AddOrganisationMemberCommand) (*domain.Organisation, error) {
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
	if organisation.HasUser(cmd.UserID) {
		return nil, errors.Conflict("Membership", "user "+cmd.UserID+" is already a member of organisation "+organisation.ID)
	}

	user, err := uow.Users().GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", cmd.UserID)
	}

	if err := organisation.AddUser(s.stamp, user.ID); err != nil {
		return nil, err
	}
	if _, err := uow.Organisations().Update(ctx, organisation); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("added organisation member", "id", organisation.ID, "user_id", user.ID, "snapshot", utils.JSONSnapshot(organisation))
	return organisation, nil
}

// RemoveOrganisationMember removes a user from an organisation.
func (s *OrganisationService) RemoveOrganisationMember(ctx context.Context, cmd RemoveOrganisationMemberCommand) (*domain.Organisation, error) {
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

	if err := organisation.RemoveUser(s.stamp, cmd.UserID); err != nil {
		return nil, err
	}
	if _, err := uow.Organisations().Update(ctx, organisation); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("removed organisation member", "id", organisation.ID, "user_id", cmd.UserID, "snapshot", utils.JSONSnapshot(organisation))
	return organisation, nil
}
