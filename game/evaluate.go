// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import "github.com/danielhkuo/tictac/models"

// Evaluate classifies a square board. Lines are checked in a fixed order: rows,
// columns, the main diagonal, then the anti-diagonal. The first complete line of
// one player's marks wins. A full board without a line is a draw.
func Evaluate(board models.Board) models.Outcome {
	return EvaluateSized(board, board.Size())
}

// EvaluateSized evaluates the top-left n×n square of board. Cells missing from a
// ragged board count as empty.
func EvaluateSized(board models.Board, n int) models.Outcome {
	if n <= 0 {
		return models.Undecided
	}
	at := func(r, c int) models.Cell {
		if r >= len(board) || c >= len(board[r]) {
			return models.Empty
		}
		return board[r][c]
	}

	for r := 0; r < n; r++ {
		if w, ok := line(n, func(i int) models.Cell { return at(r, i) }); ok {
			return models.WinnerOutcome(w)
		}
	}
	for c := 0; c < n; c++ {
		if w, ok := line(n, func(i int) models.Cell { return at(i, c) }); ok {
			return models.WinnerOutcome(w)
		}
	}
	if w, ok := line(n, func(i int) models.Cell { return at(i, i) }); ok {
		return models.WinnerOutcome(w)
	}
	if w, ok := line(n, func(i int) models.Cell { return at(i, n-1-i) }); ok {
		return models.WinnerOutcome(w)
	}

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if !at(r, c).Playable() {
				return models.Undecided
			}
		}
	}
	return models.Draw
}

// line reports whether all n cells yielded by cell hold the same player mark.
func line(n int, cell func(i int) models.Cell) (models.Cell, bool) {
	first := cell(0)
	if !first.Playable() {
		return models.Empty, false
	}
	for i := 1; i < n; i++ {
		if cell(i) != first {
			return models.Empty, false
		}
	}
	return first, true
}
