// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the tictac backend.

# Handler Types

Each handler is a struct with store and config dependencies:

  - RoomHandler: room create, read, join, move and the live update stream
  - StatsHandler: global win/draw tallies

Handlers are created via constructor functions:

	roomHandler := handlers.NewRoomHandler(s, cfg)

# Rooms

	POST  /rooms               → CreateRoom (201, returns code)
	GET   /rooms/{code}        → GetRoom
	POST  /rooms/{code}/join   → JoinRoom (returns symbol)
	PATCH /rooms/{code}        → UpdateRoom (conditional move write)
	GET   /rooms/{code}/live   → LiveRoom (WebSocket)

Room codes are matched case-insensitively.

# Joining

JoinRoom is one atomic slot claim. The same player_id always gets its slot
back; once X and O both belong to other players the room answers 409.

# Moves

The PATCH body names the state the move was computed against and the fields it
replaces:

	{
	  "expect": {"turn": "X", "move_count": 4, "board_state": [...]},
	  "set": {"board_state": [...], "current_turn": "O", "is_game_over": false,
	          "winner": "None", "move_count": 5}
	}

If the room has moved on (another write landed, wrong turn, game over) the
response is 412 and nothing is written. Writes whose fields contradict each
other are 400.

# Live Updates

LiveRoom upgrades to a WebSocket and sends one JSON RoomDelta frame per
update of the room. The subscription is opened before the upgrade, so a client
that connects and then fetches the room cannot miss a change. Only the server
writes; client frames other than control frames are ignored.

# Stats

	GET    /stats → sums {"X", "O", "Draw"}
	POST   /stats → records {"outcome": "X" | "O" | "Draw"} (201)
	DELETE /stats → deletes every record, returns {"deleted": n}

# Error Responses

All errors return JSON:

	{"error": "Not Found", "message": "Room not found"}

Status codes:

  - 400: Invalid input
  - 404: Room not found
  - 409: Room is full
  - 412: Stale move
  - 500: Server error
*/
package handlers
