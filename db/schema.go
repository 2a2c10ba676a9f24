// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to the subset of SQL shared by PostgreSQL and SQLite.
const schema = `
-- Rooms
CREATE TABLE IF NOT EXISTS room (
    code TEXT PRIMARY KEY,
    board_state TEXT NOT NULL,
    board_size INTEGER NOT NULL CHECK (board_size BETWEEN 3 AND 10),
    current_turn TEXT CHECK (current_turn IN ('X', 'O')),
    is_game_over BOOLEAN NOT NULL DEFAULT FALSE,
    winner TEXT CHECK (winner IN ('X', 'O', 'Draw')),
    player_x TEXT,
    player_o TEXT,
    move_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_room_updated_at ON room(updated_at);

-- Global outcome counters, one row per finished game
CREATE TABLE IF NOT EXISTS stats (
    id TEXT PRIMARY KEY,
    x INTEGER NOT NULL DEFAULT 0,
    o INTEGER NOT NULL DEFAULT 0,
    draw INTEGER NOT NULL DEFAULT 0,
    recorded_at TIMESTAMP NOT NULL
);
`
