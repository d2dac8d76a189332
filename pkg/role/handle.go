package role

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

// Handler handles HTTP requests for role management
type Handler struct {
	roleService *RoleService
}

// NewHandler creates a new role handler
func NewHandler(roleService *RoleService) *Handler {
	return &Handler{roleService: roleService}
}

// RegisterRoutes registers the role routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.GetRoles)
		r.Post("/", h.CreateRole)
		r.Get("/{id}", h.GetRole)
		r.Put("/{id}", h.UpdateRole)
		r.Delete("/{id}", h.DeleteRole)
		r.Post("/{id}/members", h.AddRoleMember)
		r.Delete("/{id}/members/{userId}", h.RemoveRoleMember)
	})
}

// MemberResponse is the wire shape of one membership record.
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	DateCreated time.Time `json:"date_created"`
}

// RoleResponse is the wire shape of a role.
type RoleResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Cursor       int64            `json:"cursor"`
	DateCreated  time.Time        `json:"date_created"`
	DateModified time.Time        `json:"date_modified"`
	DateDeleted  *time.Time       `json:"date_deleted,omitempty"`
	Users        []MemberResponse `json:"users"`
}

func toRoleResponse(role *domain.Role) RoleResponse {
	var resp RoleResponse
	copier.Copy(&resp, role)
	return resp
}

// GetRoles handles the request to list roles
func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	query := GetRolesQuery{Cursor: 0, PageSize: domain.DefaultPagination().PageSize}

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
	if v := q.Get("user_id"); v != "" {
		query.UserID = &v
	}
	if v := q.Get("name"); v != "" {
		query.Name = &v
	}
	if v := q.Get("description"); v != "" {
		query.Description = &v
	}
	if v := q.Get("modified_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "modified_after must be RFC3339"))
			return
		}
		query.ModifiedAfter = &t
	}
	if v := q.Get("modified_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "modified_before must be RFC3339"))
			return
		}
		query.ModifiedBefore = &t
	}

	roles, err := h.roleService.GetRoles(r.Context(), query)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	resp := make([]RoleResponse, len(roles))
	for i, role := range roles {
		resp[i] = toRoleResponse(role)
	}
	render.JSON(w, r, resp)
}

// CreateRole handles the request to create a role
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var cmd CreateRoleCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	role, err := h.roleService.CreateRole(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toRoleResponse(role))
}

// GetRole handles the request to get a role by id
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roleService.GetRole(r.Context(), GetRoleQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toRoleResponse(role))
}

// UpdateRole handles the request to update a role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateRoleCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	role, err := h.roleService.UpdateRole(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toRoleResponse(role))
}

// DeleteRole handles the request to soft-delete a role
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roleService.DeleteRole(r.Context(), DeleteRoleCommand{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toRoleResponse(role))
}

// AddRoleMember handles the request to assign the role to a user
func (h *Handler) AddRoleMember(w http.ResponseWriter, r *http.Request) {
	var cmd AddRoleMemberCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.RoleID = chi.URLParam(r, "id")

	role, err := h.roleService.AddRoleMember(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toRoleResponse(role))
}

// RemoveRoleMember handles the request to withdraw the role from a user
func (h *Handler) RemoveRoleMember(w http.ResponseWriter, r *http.Request) {
	cmd := RemoveRoleMemberCommand{
		RoleID: chi.URLParam(r, "id"),
		UserID: chi.URLParam(r, "userId"),
	}

	role, err := h.roleService.RemoveRoleMember(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toRoleResponse(role))
}
