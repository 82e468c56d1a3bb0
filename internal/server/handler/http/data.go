package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/HydroPal/internal/middleware"
	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/go-chi/chi/v5"
)

// EntryService defines the tracking entry operations required by the
// DataHandler.
type EntryService interface {
	List(ctx context.Context, actor models.Identity, logType models.LogType) ([]models.Entry, error)
	Get(ctx context.Context, actor models.Identity, id string) (*models.Entry, error)
	Create(ctx context.Context, actor models.Identity, logType models.LogType, data models.Data) (*models.CreatedEntry, error)
	Update(ctx context.Context, actor models.Identity, id string, data models.Data) (*models.Entry, error)
	Delete(ctx context.Context, actor models.Identity, id string) error
}

// DataHandler serves /api/data.
type DataHandler struct {
	EntryService EntryService
	Responder
}

// CreateEntryRequest is the JSON payload of POST /api/data.
type CreateEntryRequest struct {
	LogType models.LogType `json:"logType" validate:"required"`
	Data    *models.Data   `json:"data" validate:"required"`
}

// UpdateEntryRequest is the JSON payload of PUT /api/data/{id}.
type UpdateEntryRequest struct {
	Data *models.Data `json:"data" validate:"required"`
}

// List returns the caller's entries, optionally filtered by ?type=.
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	entries, err := h.EntryService.List(r.Context(), actor, models.LogType(r.URL.Query().Get("type")))
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to fetch tracking data"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"count": len(entries), "data": entries})
}

// Get returns one entry.
func (h *DataHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	entry, err := h.EntryService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, r, err, failure{NotFound: "No tracking entry found", Internal: "Failed to fetch tracking entry"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"data": entry})
}

// Create stores a new entry for the caller.
func (h *DataHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	var req CreateEntryRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, r, err, failure{})
		return
	}

	created, err := h.EntryService.Create(r.Context(), actor, req.LogType, *req.Data)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to create tracking entry"})
		return
	}
	ok(w, http.StatusCreated, map[string]any{"message": "Tracking entry created", "data": created})
}

// Update replaces the payload of one of the caller's entries.
func (h *DataHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	var req UpdateEntryRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, r, err, failure{})
		return
	}

	updated, err := h.EntryService.Update(r.Context(), actor, chi.URLParam(r, "id"), *req.Data)
	if err != nil {
		h.Error(w, r, err, failure{
			NotFound: "No tracking entry found or not authorized",
			Internal: "Failed to update tracking entry",
		})
		return
	}
	ok(w, http.StatusOK, map[string]any{"message": "Tracking entry updated", "data": updated})
}

// Delete removes an entry.
func (h *DataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.EntryService.Delete(r.Context(), actor, id); err != nil {
		h.Error(w, r, err, failure{
			NotFound: "No tracking entry found or not authorized",
			Internal: "Failed to delete tracking entry",
		})
		return
	}
	ok(w, http.StatusOK, map[string]any{"message": "Tracking entry deleted", "data": map[string]string{"id": id}})
}
