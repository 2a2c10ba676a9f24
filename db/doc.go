// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Two database types are supported:

  - postgres: github.com/lib/pq, for hosted deployments
  - sqlite: modernc.org/sqlite (pure Go), for local servers and tests

Open picks the driver and pings the server:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The statements only use SQL understood by both PostgreSQL and SQLite.

# Tables

  - room: one row per match (board as JSON text, turn, outcome, player slots,
    move_count used as the record version)
  - stats: one row per finished game with a 1 in the x, o or draw column

# Indexes

  - room.updated_at, for finding stale rooms
*/
package db
