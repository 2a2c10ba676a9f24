// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"testing"
)

func TestCreateSchemaIsIdempotent(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema call %d: %v", i+1, err)
		}
	}

	for _, table := range []string{"room", "stats"} {
		var n int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := CreateSchema(conn); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		size int
		turn string
	}{
		{"board too small", 2, "X"},
		{"board too large", 11, "X"},
		{"bad turn", 3, "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conn.Exec(`
				INSERT INTO room (code, board_state, board_size, current_turn, created_at, updated_at)
				VALUES ($1, '[]', $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			`, tt.name, tt.size, tt.turn)
			if err == nil {
				t.Error("expected a constraint violation")
			}
		})
	}
}

func TestDriverName(t *testing.T) {
	if _, err := DriverName("mysql"); err == nil {
		t.Error("expected unsupported type error")
	}
	if name, _ := DriverName(TypePostgres); name != "postgres" {
		t.Errorf("expected postgres driver, got %s", name)
	}
}
