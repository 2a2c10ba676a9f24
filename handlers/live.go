// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/danielhkuo/tictac/ids"
	"github.com/danielhkuo/tictac/middleware"
	"github.com/danielhkuo/tictac/models"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (h *RoomHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
				return true
			}
			return slices.Contains(h.cfg.AllowedOrigins, origin)
		},
	}
}

// LiveRoom handles GET /rooms/{code}/live
// Streams every update of the room as a JSON RoomDelta frame until the client
// disconnects.
func (h *RoomHandler) LiveRoom(w http.ResponseWriter, r *http.Request) {
	code := ids.NormalizeRoomCode(r.PathValue("code"))

	if _, err := h.store.RoomByCode(r.Context(), code); err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Room not found")
			return
		}
		slog.Error("failed to query room", "code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// subscribe before the upgrade so the client's refetch cannot miss an update
	updates, cancel, err := h.store.Subscribe(r.Context(), code)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}
	defer cancel()

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		slog.Warn("websocket upgrade failed", "code", code, "error", err)
		return
	}
	defer conn.Close()

	connID, _ := ids.GenerateID(4)
	slog.Info("live subscriber connected", "code", code, "conn", connID)
	defer slog.Info("live subscriber disconnected", "code", code, "conn", connID)

	// the read side only handles control frames and notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case delta, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(delta); err != nil {
				slog.Warn("failed to write room update", "code", code, "conn", connID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
