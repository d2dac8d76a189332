package domain

import (
	"context"
	"time"

	"github.com/tendant/simple-acm/pkg/errors"
)

// GroupUser is the membership record linking a user to a group.
type GroupUser struct {
	GroupID     string    `json:"group_id"`
	UserID      string    `json:"user_id"`
	DateCreated time.Time `json:"date_created"`
}

// Group belongs to exactly one organisation. Every member must already
// belong to that organisation; the group service enforces the rule before
// calling AddUser.
type Group struct {
	Base
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	OrganisationID string      `json:"organisation_id"`
	Users          []GroupUser `json:"users"`
}

// NewGroup constructs a group owned by the given organisation.
func NewGroup(stamp Stamper, id, name, description, organisationID string) *Group {
	return &Group{
		Base:           stamp.NewBase(id),
		Name:           name,
		Description:    description,
		OrganisationID: organisationID,
	}
}

// Update applies new attribute values and records the mutation.
func (g *Group) Update(stamp Stamper, name, description string) {
	g.Name = name
	g.Description = description
	stamp.Touch(&g.Base)
}

// HasUser reports whether the user is a member of the group.
func (g *Group) HasUser(userID string) bool {
	for _, m := range g.Users {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AddUser adds a membership record. Duplicate membership is rejected with a
// conflict; the collection is left untouched.
func (g *Group) AddUser(stamp Stamper, userID string) error {
	if g.HasUser(userID) {
		return errors.Conflict("Membership", "user "+userID+" is already a member of group "+g.ID)
	}
	g.Users = append(g.Users, GroupUser{
		GroupID:     g.ID,
		UserID:      userID,
		DateCreated: stamp.Clock.Now(),
	})
	stamp.Touch(&g.Base)
	return nil
}

// RemoveUser removes a membership record. Removing a non-member fails with
// not-found; the collection is left untouched.
func (g *Group) RemoveUser(stamp Stamper, userID string) error {
	for i, m := range g.Users {
		if m.UserID == userID {
			g.Users = append(g.Users[:i], g.Users[i+1:]...)
			stamp.Touch(&g.Base)
			return nil
		}
	}
	return errors.NotFound("Membership", "group "+g.ID+" user "+userID)
}

// SoftDelete marks the group deleted without removing the row.
func (g *Group) SoftDelete(stamp Stamper) {
	stamp.SoftDelete(&g.Base)
}

// GroupFilter narrows group collection queries.
type GroupFilter struct {
	OrganisationID *string
	Name           *string
	Page           Pagination
	Timestamps     TimestampFilter
}

// GroupRepository is the persistence contract for the Group aggregate.
type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*Group, error)
	GetGroups(ctx context.Context, filter GroupFilter) ([]*Group, error)
	Create(ctx context.Context, group *Group) (*Group, error)
	Update(ctx context.Context, group *Group) (*Group, error)
	Delete(ctx context.Context, group *Group) (*Group, error)
}
