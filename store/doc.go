// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the relational persistence layer for rooms and stats.

Every write is a single SQL statement, so the database does the serializing:

  - InsertRoom generates a room code and retries on collision (ON CONFLICT DO NOTHING)
  - ClaimSlot binds a player to X or O with one UPDATE ... RETURNING
  - UpdateRoom writes a move only if the game is running, it is the expected
    player's turn and move_count has not moved on; otherwise models.ErrStaleWrite
  - SumStats, RecordOutcome and ClearStats maintain the global tallies

The SQL uses $N placeholders and works on both PostgreSQL and SQLite.

# Change Notifications

Successful joins and moves publish the full updated row to a Notifier:

	s := store.New(conn, store.NewHub())                 // single process
	n, err := store.NewPGNotifier(conn, cfg.DatabaseURL) // LISTEN/NOTIFY across processes
	s := store.New(conn, n)

Subscribe returns a channel scoped to one room code and a cancel function that
closes it. Slow subscribers miss updates rather than block writers.
*/
package store
