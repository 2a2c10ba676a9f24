// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import "github.com/danielhkuo/tictac/models"

// Local is a two-players-one-screen game. Unlike networked rooms its board can
// be resized; resizing always starts a new, empty game.
type Local struct {
	board   models.Board
	turn    models.Cell
	outcome models.Outcome
}

// NewLocal starts a local game on an n×n board (clamped to the allowed range).
func NewLocal(n int) *Local {
	l := &Local{}
	l.Resize(n)
	return l
}

func (l *Local) Board() models.Board     { return l.board.Clone() }
func (l *Local) Size() int               { return l.board.Size() }
func (l *Local) Outcome() models.Outcome { return l.outcome }
func (l *Local) GameOver() bool          { return l.outcome != models.Undecided }

// Turn returns the player to move, or Blocked once the game is over.
func (l *Local) Turn() models.Cell {
	if l.GameOver() {
		return models.Blocked
	}
	return l.turn
}

// Play places the current player's mark. Occupied cells, out of range cells and
// moves after the game ended are ignored and return false.
func (l *Local) Play(row, col int) bool {
	if l.GameOver() || !InBounds(l.Size(), row, col) || l.board[row][col] != models.Empty {
		return false
	}
	l.board[row][col] = l.turn
	l.outcome = Evaluate(l.board)
	if !l.GameOver() {
		l.turn = l.turn.Opponent()
	}
	return true
}

// Resize discards the current game and starts an empty one of the new size.
func (l *Local) Resize(n int) {
	l.board = NewBoard(ClampSize(n))
	l.turn = models.PlayerX
	l.outcome = models.Undecided
}

func (l *Local) Grow()   { l.Resize(l.Size() + 1) }
func (l *Local) Shrink() { l.Resize(l.Size() - 1) }

// Reset restarts at the current size.
func (l *Local) Reset() { l.Resize(l.Size()) }
