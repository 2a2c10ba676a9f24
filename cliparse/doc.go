// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all server settings:

	cliparse.LoadEnv()
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string or SQLite file (default: tictac.db for SQLite)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AllowedOrigins: CORS origins; empty allows any origin

# CLI Flags

	-p        Server port
	-d        Database URL
	-t        Database type
	-origins  Comma-separated allowed origins

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	ALLOWED_ORIGINS → -origins

CLI flags take precedence over environment variables, and variables already in
the environment take precedence over a .env file read by LoadEnv.

# Client

ParseClientEnv reads the terminal client settings:

	TICTAC_SERVER       base URL of the server (default: http://localhost:3318)
	TICTAC_PLAYER_FILE  where the player identity is kept

# Validation

ParseFlags returns an error if:

  - PORT is not a number in 1..65535
  - the database type is not sqlite or postgres
  - postgres is selected without a DATABASE_URL
*/
package cliparse
