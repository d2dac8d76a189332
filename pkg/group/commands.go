package group

import "time"

// CreateGroupCommand creates a group inside an existing organisation.
type CreateGroupCommand struct {
	OrganisationID string `json:"organisation_id" validate:"required,max=64"`
	Name           string `json:"name" validate:"required,max=255"`
	Description    string `json:"description" validate:"max=1024"`
}

// UpdateGroupCommand renames or redescribes a group. The owning
// organisation never changes after creation.
type UpdateGroupCommand struct {
	ID          string `json:"id" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

// DeleteGroupCommand soft-deletes a group.
type DeleteGroupCommand struct {
	ID string `json:"id" validate:"required,max=64"`
}

// GetGroupQuery fetches one group by id.
type GetGroupQuery struct {
	ID string `json:"id"`
}

// GetGroupsQuery fetches a filtered, cursor-paginated group collection.
type GetGroupsQuery struct {
	OrganisationID *string    `json:"organisation_id,omitempty" validate:"omitempty,max=64"`
	Name           *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Cursor         int64      `json:"cursor" validate:"gte=0"`
	PageSize       int        `json:"page_size" validate:"gte=1,lte=100"`
	ModifiedAfter  *time.Time `json:"modified_after,omitempty"`
	ModifiedBefore *time.Time `json:"modified_before,omitempty"`
}

// AddGroupMemberCommand adds a user to a group. The user must already be a
// member of the group's organisation.
type AddGroupMemberCommand struct {
	GroupID string `json:"group_id" validate:"required,max=64"`
	UserID  string `json:"user_id" validate:"required,max=64"`
}

// RemoveGroupMemberCommand removes a user from a group.
type RemoveGroupMemberCommand struct {
	GroupID string `json:"group_id" validate:"required,max=64"`
	UserID  string `json:"user_id" validate:"required,max=64"`
}
