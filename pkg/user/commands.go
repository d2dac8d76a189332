package user

import "time"

// SynchroniseUserCommand mirrors a user from the external identity source.
// Idempotent upsert keyed on the natural id: an existing user is updated in
// place, an absent one is created.
type SynchroniseUserCommand struct {
	ID    string `json:"id" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=320"`
}

// DeleteUserCommand hard-deletes a user.
type DeleteUserCommand struct {
	ID string `json:"id" validate:"required,max=64"`
}

// GetUserQuery fetches one user by id.
type GetUserQuery struct {
	ID string `json:"id"`
}

// GetUsersQuery fetches a filtered, cursor-paginated user collection.
type GetUsersQuery struct {
	Name           *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,max=320"`
	Cursor         int64      `json:"cursor" validate:"gte=0"`
	PageSize       int        `json:"page_size" validate:"gte=1,lte=100"`
	ModifiedAfter  *time.Time `json:"modified_after,omitempty"`
	ModifiedBefore *time.Time `json:"modified_before,omitempty"`
}
