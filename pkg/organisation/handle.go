package organisation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/errors"
)

// Handler handles HTTP requests for organisation management
type Handler struct {
	organisationService *OrganisationService
}

// NewHandler creates a new organisation handler
func NewHandler(organisationService *OrganisationService) *Handler {
	return &Handler{organisationService: organisationService}
}

// RegisterRoutes registers the organisation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/organisations", func(r chi.Router) {
		r.Get("/", h.GetOrganisations)
		r.Get("/{id}", h.GetOrganisation)
		r.Put("/{id}", h.SynchroniseOrganisation)
		r.Delete("/{id}", h.DeleteOrganisation)
		r.Post("/{id}/members", h.AddOrganisationMember)
		r.Delete("/{id}/members/{userId}", h.RemoveOrganisationMember)
	})
}

// MemberResponse is the wire shape of a membership entry.
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	DateCreated time.Time `json:"date_created"`
}

// OrganisationResponse is the wire shape of an organisation.
type OrganisationResponse struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Cursor               int64            `json:"cursor"`
	DateCreated          time.Time        `json:"date_created"`
	DateModified         time.Time        `json:"date_modified"`
	DateDeleted          *time.Time       `json:"date_deleted,omitempty"`
	DateLastSynchronised *time.Time       `json:"date_last_synchronised,omitempty"`
	Users                []MemberResponse `json:"users"`
}

func toOrganisationResponse(organisation *domain.Organisation) OrganisationResponse {
	var resp OrganisationResponse
	copier.Copy(&resp, organisation)
	if resp.Users == nil {
		resp.Users = []MemberResponse{}
	}
	return resp
}

// GetOrganisations handles the request to list organisations
func (h *Handler) GetOrganisations(w http.ResponseWriter, r *http.Request) {
	query := GetOrganisationsQuery{Cursor: 0, PageSize: domain.DefaultPagination().PageSize}

	q := r.URL.Query()
	if v := q.Get("cursor"); v != "" {
		cursor, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "cursor must be an integer"))
			return
		}
		query.Cursor = cursor
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "page_size must be an integer"))
			return
		}
		query.PageSize = size
	}
	if v := q.Get("name"); v != "" {
		query.Name = &v
	}
	if v := q.Get("modified_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "modified_after must be an RFC 3339 timestamp"))
			return
		}
		query.ModifiedAfter = &t
	}
	if v := q.Get("modified_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "modified_before must be an RFC 3339 timestamp"))
			return
		}
		query.ModifiedBefore = &t
	}

	organisations, err := h.organisationService.GetOrganisations(r.Context(), query)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	resp := make([]OrganisationResponse, len(organisations))
	for i, organisation := range organisations {
		resp[i] = toOrganisationResponse(organisation)
	}
	render.JSON(w, r, resp)
}

// GetOrganisation handles the request to get an organisation by id
func (h *Handler) GetOrganisation(w http.ResponseWriter, r *http.Request) {
	organisation, err := h.organisationService.GetOrganisation(r.Context(), GetOrganisationQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toOrganisationResponse(organisation))
}

// SynchroniseOrganisation handles the request to upsert an organisation from
// the external source
func (h *Handler) SynchroniseOrganisation(w http.ResponseWriter, r *http.Request) {
	var cmd SynchroniseOrganisationCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	organisation, err := h.organisationService.SynchroniseOrganisation(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toOrganisationResponse(organisation))
}

// DeleteOrganisation handles the request to hard-delete an organisation
func (h *Handler) DeleteOrganisation(w http.ResponseWriter, r *http.Request) {
	organisation, err := h.organisationService.DeleteOrganisation(r.Context(), DeleteOrganisationCommand{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toOrganisationResponse(organisation))
}

// AddOrganisationMember handles the request to add a user to an organisation
func (h *Handler) AddOrganisationMember(w http.ResponseWriter, r *http.Request) {
	var cmd AddOrganisationMemberCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.OrganisationID = chi.URLParam(r, "id")

	organisation, err := h.organisationService.AddOrganisationMember(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toOrganisationResponse(organisation))
}

// RemoveOrganisationMember handles the request to remove a user from an
// organisation
func (h *Handler) RemoveOrganisationMember(w http.ResponseWriter, r *http.Request) {
	cmd := RemoveOrganisationMemberCommand{
		OrganisationID: chi.URLParam(r, "id"),
		UserID:         chi.URLParam(r, "userId"),
	}

	organisation, err := h.organisationService.RemoveOrganisationMember(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toOrganisationResponse(organisation))
}
