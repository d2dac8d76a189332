// Package dummy is the minimal worked example of an aggregate in this
// codebase. New aggregates start from a copy of this package: a command
// set, a service wired to the unit of work, and a chi handler.
package dummy

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/utils"
	"github.com/tendant/simple-acm/pkg/validation"
)

// DummyService handles every dummy command and query.
type DummyService struct {
	uow      domain.UnitOfWorkFactory
	stamp    domain.Stamper
	ids      domain.IDGenerator
	validate *validation.Validator
}

// NewDummyService creates a new dummy service.
func NewDummyService(uow domain.UnitOfWorkFactory, stamp domain.Stamper, ids domain.IDGenerator, validate *validation.Validator) *DummyService {
	return &DummyService{
		uow:      uow,
		stamp:    stamp,
		ids:      ids,
		validate: validate,
	}
}

// CreateDummy creates a dummy record.
func (s *DummyService) CreateDummy(ctx context.Context, cmd CreateDummyCommand) (*domain.Dummy, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	dummy := domain.NewDummy(s.stamp, s.ids.NewID(), cmd.Name)
	if _, err := uow.Dummies().Create(ctx, dummy); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("created dummy", "id", dummy.ID, "snapshot", utils.JSONSnapshot(dummy))
	return dummy, nil
}

// UpdateDummy renames an existing dummy record.
func (s *DummyService) UpdateDummy(ctx context.Context, cmd UpdateDummyCommand) (*domain.Dummy, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	dummy, err := uow.Dummies().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if dummy == nil {
		return nil, errors.NotFound("Dummy", cmd.ID)
	}

	dummy.Update(s.stamp, cmd.Name)
	if _, err := uow.Dummies().Update(ctx, dummy); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("updated dummy", "id", dummy.ID, "snapshot", utils.JSONSnapshot(dummy))
	return dummy, nil
}

// DeleteDummy soft-deletes a dummy record.
func (s *DummyService) DeleteDummy(ctx context.Context, cmd DeleteDummyCommand) (*domain.Dummy, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	dummy, err := uow.Dummies().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if dummy == nil {
		return nil, errors.NotFound("Dummy", cmd.ID)
	}

	dummy.SoftDelete(s.stamp)
	if _, err := uow.Dummies().Update(ctx, dummy); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("deleted dummy", "id", dummy.ID, "snapshot", utils.JSONSnapshot(dummy))
	return dummy, nil
}

// GetDummy retrieves a dummy record by id.
func (s *DummyService) GetDummy(ctx context.Context, query GetDummyQuery) (*domain.Dummy, error) {
	uow := s.uow.NewUnitOfWork()
	dummy, err := uow.Dummies().GetByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if dummy == nil {
		return nil, errors.NotFound("Dummy", query.ID)
	}
	return dummy, nil
}

// GetDummies retrieves a filtered, paginated collection.
func (s *DummyService) GetDummies(ctx context.Context, query GetDummiesQuery) ([]*domain.Dummy, error) {
	if err := s.validate.Query(query); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	return uow.Dummies().GetDummies(ctx, domain.DummyFilter{
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
