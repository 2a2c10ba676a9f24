// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/models"
	"github.com/danielhkuo/tictac/store"
	"github.com/danielhkuo/tictac/testutil"
)

type testEnv struct {
	db    *sql.DB
	hub   *store.Hub
	store *store.Store
	rooms *RoomHandler
	stats *StatsHandler
}

func setupHandlers(t *testing.T) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	hub := store.NewHub()
	s := store.New(db, hub)
	t.Cleanup(func() { s.Close() })

	cfg := testutil.GetTestConfig()
	return testEnv{
		db:    db,
		hub:   hub,
		store: s,
		rooms: NewRoomHandler(s, cfg),
		stats: NewStatsHandler(s, cfg),
	}
}

// serve runs a handler for a request whose path carries a room code.
func serve(h http.HandlerFunc, req *http.Request, code string) *httptest.ResponseRecorder {
	if code != "" {
		req.SetPathValue("code", code)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// moveRequest builds the PATCH body for mark at (row, col) on top of room.
func moveRequest(t *testing.T, room models.Room, row, col int, mark models.Cell) models.UpdateRoomRequest {
	t.Helper()

	board, outcome, err := game.Place(room.Board, row, col, mark)
	if err != nil {
		t.Fatalf("Failed to place mark: %v", err)
	}

	set := models.MoveWrite{
		Board:   board,
		Turn:    mark.Opponent(),
		Outcome: outcome,
		Moves:   room.Moves + 1,
	}
	if outcome != models.Undecided {
		set.GameOver = true
		set.Turn = models.Blocked
	}

	return models.UpdateRoomRequest{
		Expect: models.MoveCondition{Turn: mark, Moves: room.Moves, Board: room.Board},
		Set:    set,
	}
}
