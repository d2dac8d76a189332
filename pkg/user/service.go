package user

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
	"github.com/tendant/simple-acm/pkg/utils"
	"github.com/tendant/simple-acm/pkg/validation"
)

// UserService handles every user command and query.
type UserService struct {
	uow      domain.UnitOfWorkFactory
	stamp    domain.Stamper
	validate *validation.Validator
}

// NewUserService creates a new user service. Users carry natural-key ids
// from the external identity source, so no id generator is needed here.
func NewUserService(uow domain.UnitOfWorkFactory, stamp domain.Stamper, validate *validation.Validator) *UserService {
	return &UserService{
		uow:      uow,
		stamp:    stamp,
		validate: validate,
	}
}

// SynchroniseUser upserts a user under its natural id. Calling it twice
// with the same id converges to one stored record with the latest values.
func (s *UserService) SynchroniseUser(ctx context.Context, cmd SynchroniseUserCommand) (*domain.User, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	user, err := uow.Users().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if user != nil {
		user.Synchronise(s.stamp, cmd.Name, cmd.Email)
		if _, err := uow.Users().Update(ctx, user); err != nil {
			return nil, err
		}
	} else {
		user = domain.NewUser(s.stamp, cmd.ID, cmd.Name, cmd.Email)
		if _, err := uow.Users().Create(ctx, user); err != nil {
			return nil, err
		}
	}

	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("synchronised user", "id", user.ID, "snapshot", utils.JSONSnapshot(user))
	return user, nil
}

// DeleteUser hard-deletes a user and returns its final state.
func (s *UserService) DeleteUser(ctx context.Context, cmd DeleteUserCommand) (*domain.User, error) {
	if err := s.validate.Command(cmd); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	user, err := uow.Users().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", cmd.ID)
	}

	if _, err := uow.Users().Delete(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}

	slog.Info("deleted user", "id", user.ID, "snapshot", utils.JSONSnapshot(user))
	return user, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, query GetUserQuery) (*domain.User, error) {
	uow := s.uow.NewUnitOfWork()
	user, err := uow.Users().GetByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", query.ID)
	}
	return user, nil
}

// GetUsers retrieves a filtered, paginated user collection.
func (s *UserService) GetUsers(ctx context.Context, query GetUsersQuery) ([]*domain.User, error) {
	if err := s.validate.Query(query); err != nil {
		return nil, err
	}

	uow := s.uow.NewUnitOfWork()
	return uow.Users().GetUsers(ctx, domain.UserFilter{
		Name:  query.Name,
		Email: query.Email,
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
