package dummy

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

// Handler handles HTTP requests for dummy records
type Handler struct {
	dummyService *DummyService
}

// NewHandler creates a new dummy handler
func NewHandler(dummyService *DummyService) *Handler {
	return &Handler{dummyService: dummyService}
}

// RegisterRoutes registers the dummy routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dummies", func(r chi.Router) {
		r.Get("/", h.GetDummies)
		r.Post("/", h.CreateDummy)
		r.Get("/{id}", h.GetDummy)
		r.Put("/{id}", h.UpdateDummy)
		r.Delete("/{id}", h.DeleteDummy)
	})
}

// DummyResponse is the wire shape of a dummy record.
type DummyResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Cursor       int64      `json:"cursor"`
	DateCreated  time.Time  `json:"date_created"`
	DateModified time.Time  `json:"date_modified"`
	DateDeleted  *time.Time `json:"date_deleted,omitempty"`
}

func toDummyResponse(dummy *domain.Dummy) DummyResponse {
	var resp DummyResponse
	copier.Copy(&resp, dummy)
	return resp
}

// GetDummies handles the request to list dummy records
func (h *Handler) GetDummies(w http.ResponseWriter, r *http.Request) {
	query := GetDummiesQuery{Cursor: 0, PageSize: domain.DefaultPagination().PageSize}

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

	dummies, err := h.dummyService.GetDummies(r.Context(), query)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	resp := make([]DummyResponse, len(dummies))
	for i, dummy := range dummies {
		resp[i] = toDummyResponse(dummy)
	}
	render.JSON(w, r, resp)
}

// GetDummy handles the request to get a dummy record by id
func (h *Handler) GetDummy(w http.ResponseWriter, r *http.Request) {
	dummy, err := h.dummyService.GetDummy(r.Context(), GetDummyQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toDummyResponse(dummy))
}

// CreateDummy handles the request to create a dummy record
func (h *Handler) CreateDummy(w http.ResponseWriter, r *http.Request) {
	var cmd CreateDummyCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	dummy, err := h.dummyService.CreateDummy(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toDummyResponse(dummy))
}

// UpdateDummy handles the request to rename a dummy record
func (h *Handler) UpdateDummy(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateDummyCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	dummy, err := h.dummyService.UpdateDummy(r.Context(), cmd)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toDummyResponse(dummy))
}

// DeleteDummy handles the request to soft-delete a dummy record
func (h *Handler) DeleteDummy(w http.ResponseWriter, r *http.Request) {
	dummy, err := h.dummyService.DeleteDummy(r.Context(), DeleteDummyCommand{ID: chi.URLParam(r, "id")})
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	render.JSON(w, r, toDummyResponse(dummy))
}
