// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the HTTP and WebSocket client for a tictac server.

A Client satisfies room.Backend and room.StatsRecorder, so a Synchronizer can
run against a remote server:

	c := client.New("http://localhost:3318")
	s := room.New(c, playerID, room.WithStats(c))

Status codes map back to the shared errors: 404 is models.ErrRoomNotFound, 409
is models.ErrRoomFull and 412 is models.ErrStaleWrite. Anything else is an
*APIError.
*/
package client
