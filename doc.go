// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the tictac API server.

tictac is tic-tac-toe on boards from 3x3 to 10x10. Two players share a room
identified by a six-character code; every join and move is a conditional write
on the room record, and both players follow the record through a live
WebSocket stream.

# Starting the Server

With no configuration the server listens on 3318 and keeps its data in a local
SQLite file:

	go run .

For PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first; real environment
variables and flags take precedence.

# Configuration

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): connection string or SQLite path (default: tictac.db)
  - ALLOWED_ORIGINS (-origins): comma separated CORS and WebSocket origins (default: any)

With PostgreSQL, room updates travel through LISTEN/NOTIFY so several server
processes can share one database.

# Architecture

  - handlers: HTTP and WebSocket handlers (rooms, live updates, stats)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - store: Room and stats persistence, change notifications
  - db: Driver selection and schema creation
  - models: Domain, request and response types
  - game: Win/draw evaluation and board helpers
  - room: Client-side room synchronizer
  - client: HTTP and WebSocket client for the synchronizer
  - identity, ids: Player identities and room codes
  - cliparse: Configuration parsing

The terminal client lives in cmd/play.

See package documentation for each component.
*/
package main
