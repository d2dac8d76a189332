package dummy

import "time"

// CreateDummyCommand creates a dummy record.
type CreateDummyCommand struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UpdateDummyCommand renames an existing dummy record.
type UpdateDummyCommand struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=255"`
}

// DeleteDummyCommand soft-deletes a dummy record.
type DeleteDummyCommand struct {
	ID string `json:"id" validate:"required,max=64"`
}

// GetDummyQuery fetches one dummy record by id.
type GetDummyQuery struct {
	ID string `json:"id"`
}

// GetDummiesQuery fetches a filtered, cursor-paginated collection.
type GetDummiesQuery struct {
	Name           *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Cursor         int64      `json:"cursor" validate:"gte=0"`
	PageSize       int        `json:"page_size" validate:"gte=1,lte=100"`
	ModifiedAfter  *time.Time `json:"modified_after,omitempty"`
	ModifiedBefore *time.Time `json:"modified_before,omitempty"`
}
