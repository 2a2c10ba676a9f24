// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package room keeps a client's copy of a two-player room in step with the backend.

# States

	NoRoom → Hosting/Joining → Active → Finished

A failed Create or Join returns to the previous state. There is no way back to
NoRoom once a room is bound.

# Usage

	s := room.New(backend, playerID, room.WithStats(statsRecorder))
	defer s.Close()

	code, err := s.Create(ctx, 4)   // or: symbol, err := s.Join(ctx, code)
	res, err := s.SubmitMove(ctx, row, col)

	for ev := range s.Events() {
		render(ev.Room)
	}

# Moves

SubmitMove checks, in order, that a game is active, the cell is empty and it is
this player's turn; failures are MoveIgnored with no error. The move is written
as one conditional update and the local room only changes once the backend has
accepted it. If another write got there first the move is MoveIgnored.

# Subscription

Each bound room code has one goroutine forwarding backend notifications into
Reconcile. Binding a different code or calling Close stops it before returning.
*/
package room
