package organisation

import "time"

// SynchroniseOrganisationCommand mirrors an organisation from the external
// source. Idempotent upsert keyed on the natural id.
type SynchroniseOrganisationCommand struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=255"`
}

// DeleteOrganisationCommand hard-deletes an organisation.
type DeleteOrganisationCommand struct {
	ID string `json:"id" validate:"required,max=64"`
}

// GetOrganisationQuery fetches one organisation by id.
type GetOrganisationQuery struct {
	ID string `json:"id"`
}

// GetOrganisationsQuery fetches a filtered, cursor-paginated collection.
type GetOrganisationsQuery struct {
	Name           *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Cursor         int64      `json:"cursor" validate:"gte=0"`
	PageSize       int        `json:"page_size" validate:"gte=1,lte=100"`
	ModifiedAfter  *time.Time `json:"modified_after,omitempty"`
	ModifiedBefore *time.Time `json:"modified_before,omitempty"`
}

// AddOrganisationMemberCommand adds a user to an organisation.
type AddOrganisationMemberCommand struct {
	OrganisationID string `json:"organisation_id" validate:"required,max=64"`
	UserID         string `json:"user_id" validate:"required,max=64"`
}

// RemoveOrganisationMemberCommand removes a user from an organisation.
type RemoveOrganisationMemberCommand struct {
	OrganisationID string `json:"organisation_id" validate:"required,max=64"`
	UserID         string `json:"user_id" validate:"required,max=64"`
}
