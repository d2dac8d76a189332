package group

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

// Handler handles HTTP requests for group management
type Handler struct {
	groupService *GroupService
}

// NewHandler creates a new group handler
func NewHandler(groupService *GroupService) *Handler {
	return &Handler{groupService: groupService}
}

// RegisterRoutes registers the group routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.GetGroups)
		r.Post("/", h.CreateGroup)
		r.Get("/{id}", h.GetGroup)
		r.Put("/{id}", h.UpdateGroup)
		r.Delete("/{id}", h.DeleteGroup)
		r.Post("/{id}/members", h.AddGroupMember)
		r.Delete("/{id}/members/{userId}", h.RemoveGroupMember)
	})
}

// MemberResponse is the wire shape of a membership entry.
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	DateCreated time.Time `json:"date_created"`
}

// GroupResponse is the wire shape of a group.
type GroupResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	OrganisationID string           `json:"organisation_id"`
	Cursor         int64            `json:"cursor"`
	DateCreated    time.Time        `json:"date_created"`
	DateModified   time.Time        `json:"date_modified"`
	DateDeleted    *time.Time       `json:"date_deleted,omitempty"`
	Users          []MemberResponse `json:"users"`
}

func toGroupResponse(group *domain.Group) GroupResponse {
	var resp GroupResponse
	copier.Copy(&resp, group)
	if resp.Users == nil {
		resp.Users = []MemberResponse{}
	}
	return resp
}

// GetGroups handles the request to list groups
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	query := GetGroupsQuery{Cursor: 0, PageSize: domain.DefaultPagination().PageSize}

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
	if v := q.Get("organisation_id"); v != "" {
		query.OrganisationID = &v
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

	groups, err := h.groupService.GetGroups(r.Context(), query)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	resp := make([]GroupResponse, len(groups))
	for i, group := range groups {
		resp[i] = toGroupResponse(group)
	}
	render.JSON(w, r, resp)
}

// GetGroup handles the request to get a group by id
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groupService.GetGroup(r.Context(), GetGroupQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toGroupResponse(group))
}

// CreateGroup handles the request to create a group
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var cmd CreateGroupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toGroupResponse(group))
}

// UpdateGroup handles the request to update a group
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateGroupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	group, err := h.groupService.UpdateGroup(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toGroupResponse(group))
}

// DeleteGroup handles the request to soft-delete a group
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groupService.DeleteGroup(r.Context(), DeleteGroupCommand{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toGroupResponse(group))
}

// AddGroupMember handles the request to add a user to a group
func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	var cmd AddGroupMemberCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.GroupID = chi.URLParam(r, "id")

	group, err := h.groupService.AddGroupMember(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toGroupResponse(group))
}

// RemoveGroupMember handles the request to remove a user from a group
func (h *Handler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	cmd := RemoveGroupMemberCommand{
		GroupID: chi.URLParam(r, "id"),
		UserID:  chi.URLParam(r, "userId"),
	}

	group, err := h.groupService.RemoveGroupMember(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toGroupResponse(group))
}
