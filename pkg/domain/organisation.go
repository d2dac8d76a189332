package domain

import (
	"context"
	"time"

	"github.com/tendant/simple-acm/pkg/errors"
)

// OrganisationUser is the membership record linking a user to an
// organisation. At most one record may exist per (OrganisationID, UserID)
// pair.
type OrganisationUser struct {
	OrganisationID string    `json:"organisation_id"`
	UserID         string    `json:"user_id"`
	DateCreated    time.Time `json:"date_created"`
}

// Organisation owns its membership collection; users are added to and
// removed from the organisation side, never the user side.
type Organisation struct {
	Base
	Name                 string             `json:"name"`
	DateLastSynchronised *time.Time         `json:"date_last_synchronised,omitempty"`
	Users                []OrganisationUser `json:"users"`
}

// NewOrganisation constructs an organisation mirrored under the given
// natural-key id.
func NewOrganisation(stamp Stamper, id, name string) *Organisation {
	o := &Organisation{
		Base: stamp.NewBase(id),
		Name: name,
	}
	now := stamp.Clock.Now()
	o.DateLastSynchronised = &now
	return o
}

// Synchronise applies the values received from the external source.
func (o *Organisation) Synchronise(stamp Stamper, name string) {
	o.Name = name
	stamp.Touch(&o.Base)
	now := stamp.Clock.Now()
	o.DateLastSynchronised = &now
}

// HasUser reports whether the user is a member of the organisation.
func (o *Organisation) HasUser(userID string) bool {
	for _, m := range o.Users {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AddUser adds a membership record. Duplicate membership is rejected with a
// conflict; the collection is left untouched.
func (o *Organisation) AddUser(stamp Stamper, userID string) error {
	if o.HasUser(userID) {
		return errors.Conflict("Membership", "user "+userID+" is already a member of organisation "+o.ID)
	}
	o.Users = append(o.Users, OrganisationUser{
		OrganisationID: o.ID,
		UserID:         userID,
		DateCreated:    stamp.Clock.Now(),
	})
	stamp.Touch(&o.Base)
	return nil
}

// RemoveUser removes a membership record. Removing a non-member fails with
// not-found; the collection is left untouched.
func (o *Organisation) RemoveUser(stamp Stamper, userID string) error {
	for i, m := range o.Users {
		if m.UserID == userID {
			o.Users = append(o.Users[:i], o.Users[i+1:]...)
			stamp.Touch(&o.Base)
			return nil
		}
	}
	return errors.NotFound("Membership", "organisation "+o.ID+" user "+userID)
}

// SoftDelete marks the organisation deleted without removing the row.
func (o *Organisation) SoftDelete(stamp Stamper) {
	stamp.SoftDelete(&o.Base)
}

// OrganisationFilter narrows organisation collection queries.
type OrganisationFilter struct {
	Name       *string
	Page       Pagination
	Timestamps TimestampFilter
}

// OrganisationRepository is the persistence contract for the Organisation
// aggregate, membership collection included.
type OrganisationRepository interface {
	GetByID(ctx context.Context, id string) (*Organisation, error)
	GetOrganisations(ctx context.Context, filter OrganisationFilter) ([]*Organisation, error)
	Create(ctx context.Context, organisation *Organisation) (*Organisation, error)
	Update(ctx context.Context, organisation *Organisation) (*Organisation, error)
	Delete(ctx context.Context, organisation *Organisation) (*Organisation, error)
}

// OrganisationUserRepository resolves membership records directly. Writes
// always flow through the owning Organisation aggregate; this interface
// exists for cross-aggregate lookups such as the group membership rule.
// GetRelationship returns (nil, nil) when no record exists.
type OrganisationUserRepository interface {
	GetRelationship(ctx context.Context, organisationID, userID string) (*OrganisationUser, error)
}
