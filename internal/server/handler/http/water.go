package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/atinyakov/HydroPal/internal/middleware"
	"github.com/atinyakov/HydroPal/internal/models"
)

// WaterService defines the water statistics required by the WaterHandler.
type WaterService interface {
	LogWater(ctx context.Context, userID string, amountMl float64) (*models.Entry, error)
	TodayTotal(ctx context.Context, userID string) (float64, error)
	ClearToday(ctx context.Context, userID string) (int64, error)
	Ranking(ctx context.Context, limit int) ([]models.RankEntry, error)
	MonthlyTotals(ctx context.Context, userID string, year int) ([]float64, error)
}

// WaterHandler serves /api/auth/water.
type WaterHandler struct {
	WaterService WaterService
	Responder
}

// WaterRequest is the JSON payload of POST /api/auth/water. Amount is in ml.
type WaterRequest struct {
	Amount float64 `json:"amount" validate:"lte=1000000"`
}

// Log records a drink for the caller.
func (h *WaterHandler) Log(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	var req WaterRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, r, err, failure{})
		return
	}

	entry, err := h.WaterService.LogWater(r.Context(), id.UserID, req.Amount)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to log water intake"})
		return
	}
	ok(w, http.StatusCreated, map[string]any{"data": entry})
}

// Today returns the caller's total for the current day.
func (h *WaterHandler) Today(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	total, err := h.WaterService.TodayTotal(r.Context(), id.UserID)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to fetch today's water intake"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"total": total})
}

// Clear deletes the caller's water entries of the current day.
func (h *WaterHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	n, err := h.WaterService.ClearToday(r.Context(), id.UserID)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to clear today's water logs"})
		return
	}
	ok(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Deleted %d water logs", n),
		"deletedCount": n,
	})
}

// Ranking returns today's top drinkers; ?limit= sets how many.
func (h *WaterHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	limit, valid := intQuery(r, "limit")
	if !valid {
		h.badRequest(w, "limit", "limit must be an integer")
		return
	}

	ranking, err := h.WaterService.Ranking(r.Context(), limit)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to fetch water ranking"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"data": ranking})
}

// Monthly returns twelve monthly totals for ?year= (default: this year).
func (h *WaterHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	year, valid := intQuery(r, "year")
	if !valid {
		h.badRequest(w, "year", "year must be an integer")
		return
	}

	totals, err := h.WaterService.MonthlyTotals(r.Context(), id.UserID, year)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to fetch monthly water data"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"data": totals})
}

// intQuery parses an optional integer query parameter. An absent
// parameter yields 0.
func intQuery(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
