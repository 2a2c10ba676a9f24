// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/tictac/cliparse"
	"github.com/danielhkuo/tictac/middleware"
	"github.com/danielhkuo/tictac/models"
	"github.com/danielhkuo/tictac/store"
)

type StatsHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewStatsHandler(s *store.Store, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{store: s, cfg: cfg}
}

// GetStats handles GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.SumStats(r.Context())
	if err != nil {
		slog.Error("failed to sum stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// RecordOutcome handles POST /stats
func (h *StatsHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var req models.RecordOutcomeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Outcome == models.Undecided {
		middleware.ErrorResponse(w, http.StatusBadRequest, "outcome must be X, O or Draw")
		return
	}

	if err := h.store.RecordOutcome(r.Context(), req.Outcome); err != nil {
		slog.Error("failed to record outcome", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record outcome")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// ClearStats handles DELETE /stats
func (h *StatsHandler) ClearStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.ClearStats(r.Context())
	if err != nil {
		slog.Error("failed to clear stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClearStatsResponse{Deleted: n})
}
