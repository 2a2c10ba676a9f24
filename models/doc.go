// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, request and response types shared by the
server, the store and the client.

# Cells and Boards

Cell is a tagged enumeration:

	Empty    board square with no mark (JSON null)
	PlayerX  "X"
	PlayerO  "O"
	Blocked  "--", the turn value once a game is over; never placed on a board

Board is a square [][]Cell of size 3 to 10.

# Outcomes

	Undecided "None"
	XWins     "X"
	OWins     "O"
	Draw      "Draw"

# Rooms

Room is the persisted record two players share. Moves counts the marks on the
board and doubles as the record version for conditional writes. RoomDelta is the
partial form delivered by change notifications; Room.Apply copies only the fields
that are present.

# Request Types

  - CreateRoomRequest: board_size, player_id
  - JoinRoomRequest: player_id
  - UpdateRoomRequest: expect (turn, move_count), set (the move write)
  - RecordOutcomeRequest: outcome

# Response Types

  - CreateRoomResponse: code
  - JoinRoomResponse: symbol
  - ClearStatsResponse: deleted
  - ErrorResponse: error, message

# Errors

ErrRoomNotFound, ErrRoomFull and ErrStaleWrite are returned by every backend
implementation.
*/
package models
