package user

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

// Handler handles HTTP requests for user management
type Handler struct {
	userService *UserService
}

// NewHandler creates a new user handler
func NewHandler(userService *UserService) *Handler {
	return &Handler{userService: userService}
}

// RegisterRoutes registers the user routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.GetUsers)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.SynchroniseUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

// UserResponse is the wire shape of a user.
type UserResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Cursor               int64      `json:"cursor"`
	DateCreated          time.Time  `json:"date_created"`
	DateModified         time.Time  `json:"date_modified"`
	DateDeleted          *time.Time `json:"date_deleted,omitempty"`
	DateLastSynchronised *time.Time `json:"date_last_synchronised,omitempty"`
}

func toUserResponse(user *domain.User) UserResponse {
	var resp UserResponse
	copier.Copy(&resp, user)
	return resp
}

// GetUsers handles the request to list users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	query := GetUsersQuery{Cursor: 0, PageSize: domain.DefaultPagination().PageSize}

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
	if v := q.Get("email"); v != "" {
		query.Email = &v
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

	users, err := h.userService.GetUsers(r.Context(), query)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	render.JSON(w, r, resp)
}

// GetUser handles the request to get a user by id
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), GetUserQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toUserResponse(user))
}

// SynchroniseUser handles the request to upsert a user from the external
// identity source
func (h *Handler) SynchroniseUser(w http.ResponseWriter, r *http.Request) {
	var cmd SynchroniseUserCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	user, err := h.userService.SynchroniseUser(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toUserResponse(user))
}

// DeleteUser handles the request to hard-delete a user
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.DeleteUser(r.Context(), DeleteUserCommand{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toUserResponse(user))
}
