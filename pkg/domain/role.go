package domain

import (
	"context"
	"time"

	"github.com/tendant/simple-acm/pkg/errors"
)

// RoleUser is the membership record linking a user to a role.
type RoleUser struct {
	RoleID      string    `json:"role_id"`
	UserID      string    `json:"user_id"`
	DateCreated time.Time `json:"date_created"`
}

// Role carries no organisation scoping; any user may hold any role.
type Role struct {
	Base
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Users       []RoleUser `json:"users"`
}

// NewRole constructs a role.
func NewRole(stamp Stamper, id, name, description string) *Role {
	return &Role{
		Base:        stamp.NewBase(id),
		Name:        name,
		Description: description,
	}
}

// Update applies new attribute values and records the mutation.
func (r *Role) Update(stamp Stamper, name, description string) {
	r.Name = name
	r.Description = description
	stamp.Touch(&r.Base)
}

// HasUser reports whether the user holds the role.
func (r *Role) HasUser(userID string) bool {
	for _, m := range r.Users {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AddUser adds a membership record. Duplicate membership is rejected with a
// conflict; the collection is left untouched.
func (r *Role) AddUser(stamp Stamper, userID string) error {
	if r.HasUser(userID) {
		return errors.Conflict("Membership", "user "+userID+" already holds role "+r.ID)
	}
	r.Users = append(r.Users, RoleUser{
		RoleID:      r.ID,
		UserID:      userID,
		DateCreated: stamp.Clock.Now(),
	})
	stamp.Touch(&r.Base)
	return nil
}

// RemoveUser removes a membership record. Removing a non-member fails with
// not-found; the collection is left untouched.
func (r *Role) RemoveUser(stamp Stamper, userID string) error {
	for i, m := range r.Users {
		if m.UserID == userID {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			stamp.Touch(&r.Base)
			return nil
		}
	}
	return errors.NotFound("Membership", "role "+r.ID+" user "+userID)
}

// SoftDelete marks the role deleted without removing the row.
func (r *Role) SoftDelete(stamp Stamper) {
	stamp.SoftDelete(&r.Base)
}

// RoleFilter narrows role collection queries. UserID restricts results to
// roles held by that user.
type RoleFilter struct {
	UserID      *string
	Name        *string
	Description *string
	Page        Pagination
	Timestamps  TimestampFilter
}

// RoleRepository is the persistence contract for the Role aggregate.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*Role, error)
	GetRoles(ctx context.Context, filter RoleFilter) ([]*Role, error)
	Create(ctx context.Context, role *Role) (*Role, error)
	Update(ctx context.Context, role *Role) (*Role, error)
	Delete(ctx context.Context, role *Role) (*Role, error)
}
