// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/tictac/cliparse"
	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/ids"
	"github.com/danielhkuo/tictac/middleware"
	"github.com/danielhkuo/tictac/models"
	"github.com/danielhkuo/tictac/store"
)

type RoomHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewRoomHandler(s *store.Store, cfg cliparse.Config) *RoomHandler {
	return &RoomHandler{store: s, cfg: cfg}
}

// CreateRoom handles POST /rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoomRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := game.ValidateSize(req.BoardSize); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlayerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player_id is required")
		return
	}

	code, err := h.store.InsertRoom(r.Context(), models.Room{
		Board:     game.NewBoard(req.BoardSize),
		BoardSize: req.BoardSize,
		Turn:      models.PlayerX,
		PlayerX:   req.PlayerID,
	})
	if err != nil {
		slog.Error("failed to insert room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateRoomResponse{Code: code})
}

// GetRoom handles GET /rooms/{code}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	code := ids.NormalizeRoomCode(r.PathValue("code"))

	room, err := h.store.RoomByCode(r.Context(), code)
	if errors.Is(err, models.ErrRoomNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		slog.Error("failed to query room", "code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, room)
}

// JoinRoom handles POST /rooms/{code}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code := ids.NormalizeRoomCode(r.PathValue("code"))

	var req models.JoinRoomRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PlayerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player_id is required")
		return
	}

	symbol, err := h.store.ClaimSlot(r.Context(), code, req.PlayerID)
	switch {
	case errors.Is(err, models.ErrRoomNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Room not found")
		return
	case errors.Is(err, models.ErrRoomFull):
		middleware.ErrorResponse(w, http.StatusConflict, "Room is full")
		return
	case err != nil:
		slog.Error("failed to claim slot", "code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join room")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.JoinRoomResponse{Symbol: symbol})
}

// UpdateRoom handles PATCH /rooms/{code}
func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	code := ids.NormalizeRoomCode(r.PathValue("code"))

	var req models.UpdateRoomRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	room, err := h.store.UpdateRoom(r.Context(), code, req.Expect, req.Set)
	switch {
	case errors.Is(err, store.ErrInvalidWrite):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, models.ErrRoomNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Room not found")
		return
	case errors.Is(err, models.ErrStaleWrite):
		middleware.ErrorResponse(w, http.StatusPreconditionFailed, "Room changed, refetch and retry")
		return
	case err != nil:
		slog.Error("failed to update room", "code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update room")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, room)
}
