// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/tictac/models"
)

// Board size limits
const (
	MinBoardSize     = 3
	MaxBoardSize     = 10
	DefaultBoardSize = 3
)

var (
	ErrBoardSize  = fmt.Errorf("board size must be between %d and %d", MinBoardSize, MaxBoardSize)
	ErrOutOfRange = errors.New("cell out of range")
)

// ValidateSize returns ErrBoardSize unless n is an allowed board size.
func ValidateSize(n int) error {
	if n < MinBoardSize || n > MaxBoardSize {
		return ErrBoardSize
	}
	return nil
}

// ClampSize forces n into the allowed range.
func ClampSize(n int) int {
	return max(MinBoardSize, min(n, MaxBoardSize))
}

// NewBoard returns an empty n×n board.
func NewBoard(n int) models.Board {
	if n < 0 {
		n = 0
	}
	b := make(models.Board, n)
	for i := range b {
		b[i] = make([]models.Cell, n)
	}
	return b
}

// InBounds reports whether (row, col) addresses a cell of an n×n board.
func InBounds(n, row, col int) bool {
	return row >= 0 && row < n && col >= 0 && col < n
}

// Place returns a copy of board with mark at (row, col) and the resulting outcome.
// The original board is not modified.
func Place(board models.Board, row, col int, mark models.Cell) (models.Board, models.Outcome, error) {
	if !InBounds(board.Size(), row, col) || col >= len(board[row]) {
		return nil, models.Undecided, ErrOutOfRange
	}
	next := board.Clone()
	next[row][col] = mark
	return next, Evaluate(next), nil
}
