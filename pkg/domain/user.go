package domain

import (
	"context"
	"time"
)

// User is a record mirrored from an external identity source; its ID is the
// natural key supplied by that source, not a generated one.
type User struct {
	Base
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	DateLastSynchronised *time.Time `json:"date_last_synchronised,omitempty"`
}

// NewUser constructs a user mirrored under the given natural-key id.
func NewUser(stamp Stamper, id, name, email string) *User {
	u := &User{
		Base:  stamp.NewBase(id),
		Name:  name,
		Email: email,
	}
	now := stamp.Clock.Now()
	u.DateLastSynchronised = &now
	return u
}

// Update applies new attribute values and records the mutation.
func (u *User) Update(stamp Stamper, name, email string) {
	u.Name = name
	u.Email = email
	stamp.Touch(&u.Base)
}

// Synchronise applies the values received from the external identity source
// and stamps DateLastSynchronised.
func (u *User) Synchronise(stamp Stamper, name, email string) {
	u.Update(stamp, name, email)
	now := stamp.Clock.Now()
	u.DateLastSynchronised = &now
}

// SoftDelete marks the user deleted without removing the row.
func (u *User) SoftDelete(stamp Stamper) {
	stamp.SoftDelete(&u.Base)
}

// UserFilter narrows user collection queries. Nil fields are ignored.
type UserFilter struct {
	Name       *string
	Email      *string
	Page       Pagination
	Timestamps TimestampFilter
}

// UserRepository is the persistence contract for the User aggregate.
// GetByID returns (nil, nil) when the user is absent or soft-deleted;
// absence is never an error. Create/Update/Delete register pending
// mutations; nothing persists until the unit of work commits.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetUsers(ctx context.Context, filter UserFilter) ([]*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, user *User) (*User, error)
}
