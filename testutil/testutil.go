// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/tictac/cliparse"
	"github.com/danielhkuo/tictac/db"
	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/ids"
	"github.com/danielhkuo/tictac/models"
)

// SetupTestDB creates a fresh SQLite database with the full schema. The file
// lives in the test's temp dir and the connection closes with the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tictac-test.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
	}
}

// CreateTestRoom inserts an empty room with X bound to playerX and returns its code.
// An empty playerX leaves both slots free.
func CreateTestRoom(t *testing.T, conn *sql.DB, size int, playerX string) string {
	t.Helper()

	code, err := ids.GenerateRoomCode()
	if err != nil {
		t.Fatalf("Failed to generate room code: %v", err)
	}

	board, _ := json.Marshal(game.NewBoard(size))
	var px any
	if playerX != "" {
		px = playerX
	}

	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO room (code, board_state, board_size, current_turn, is_game_over, player_x, move_count, created_at, updated_at)
		VALUES ($1, $2, $3, 'X', FALSE, $4, 0, $5, $6)
	`, code, string(board), size, px, now, now)
	if err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}

	return code
}

// SetTestRoomPlayers overwrites both slots of a room. Empty strings unbind.
func SetTestRoomPlayers(t *testing.T, conn *sql.DB, code, playerX, playerO string) {
	t.Helper()

	nullable := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	_, err := conn.Exec(`UPDATE room SET player_x = $1, player_o = $2 WHERE code = $3`,
		nullable(playerX), nullable(playerO), code)
	if err != nil {
		t.Fatalf("Failed to set room players: %v", err)
	}
}

// RecordTestOutcomes inserts one stats row per outcome.
func RecordTestOutcomes(t *testing.T, conn *sql.DB, outcomes ...models.Outcome) {
	t.Helper()

	for _, o := range outcomes {
		id, _ := ids.GenerateID(8)
		var x, op, draw int
		switch o {
		case models.XWins:
			x = 1
		case models.OWins:
			op = 1
		case models.Draw:
			draw = 1
		}
		_, err := conn.Exec(`INSERT INTO stats (id, x, o, draw, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
			id, x, op, draw, time.Now().UTC())
		if err != nil {
			t.Fatalf("Failed to record test outcome: %v", err)
		}
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
