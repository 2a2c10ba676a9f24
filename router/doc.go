// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the tictac backend.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(s, cfg)

# Endpoints

Health:

	GET /health

Rooms:

	POST  /rooms              - Create room
	GET   /rooms/{code}       - Read room
	POST  /rooms/{code}/join  - Claim X or O
	PATCH /rooms/{code}       - Conditional move write
	GET   /rooms/{code}/live  - WebSocket update stream

Stats:

	GET    /stats - Sums
	POST   /stats - Record outcome
	DELETE /stats - Clear

# Middleware

Every route except /health is wrapped with middleware.WithLogging. CORS is
applied around the whole mux in main.

# Go 1.22+ Routing

Routes use method-prefixed patterns with path parameters read through
r.PathValue("code"). Wrong methods get 405 from the mux.
*/
package router
