// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/tictac/cliparse"
	"github.com/danielhkuo/tictac/handlers"
	"github.com/danielhkuo/tictac/middleware"
	"github.com/danielhkuo/tictac/store"
)

func NewRouter(s *store.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	roomHandler := handlers.NewRoomHandler(s, cfg)
	statsHandler := handlers.NewStatsHandler(s, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Rooms
	mux.HandleFunc("POST /rooms", middleware.WithLogging(roomHandler.CreateRoom))
	mux.HandleFunc("GET /rooms/{code}", middleware.WithLogging(roomHandler.GetRoom))
	mux.HandleFunc("POST /rooms/{code}/join", middleware.WithLogging(roomHandler.JoinRoom))
	mux.HandleFunc("PATCH /rooms/{code}", middleware.WithLogging(roomHandler.UpdateRoom))
	mux.HandleFunc("GET /rooms/{code}/live", middleware.WithLogging(roomHandler.LiveRoom))

	// Stats
	mux.HandleFunc("GET /stats", middleware.WithLogging(statsHandler.GetStats))
	mux.HandleFunc("POST /stats", middleware.WithLogging(statsHandler.RecordOutcome))
	mux.HandleFunc("DELETE /stats", middleware.WithLogging(statsHandler.ClearStats))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tictac API v1"))
	})

	return mux
}
