package role

import "time"

// CreateRoleCommand creates a new role.
type CreateRoleCommand struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

// UpdateRoleCommand replaces a role's attributes.
type UpdateRoleCommand struct {
	ID          string `json:"id" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

// DeleteRoleCommand soft-deletes a role.
type DeleteRoleCommand struct {
	ID string `json:"id" validate:"required,max=64"`
}

// GetRoleQuery fetches one role by id. The id comes from the URL path, so
// there is no validation step.
type GetRoleQuery struct {
	ID string `json:"id"`
}

// GetRolesQuery fetches a filtered, cursor-paginated role collection.
type GetRolesQuery struct {
	UserID         *string    `json:"user_id,omitempty"`
	Name           *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=1024"`
	Cursor         int64      `json:"cursor" validate:"gte=0"`
	PageSize       int        `json:"page_size" validate:"gte=1,lte=100"`
	ModifiedAfter  *time.Time `json:"modified_after,omitempty"`
	ModifiedBefore *time.Time `json:"modified_before,omitempty"`
}

// AddRoleMemberCommand assigns a role to a user.
type AddRoleMemberCommand struct {
	RoleID string `json:"role_id" validate:"required,max=64"`
	UserID string `json:"user_id" validate:"required,max=64"`
}

// RemoveRoleMemberCommand withdraws a role from a user.
type RemoveRoleMemberCommand struct {
	RoleID string `json:"role_id" validate:"required,max=64"`
	UserID string `json:"user_id" validate:"required,max=64"`
}
