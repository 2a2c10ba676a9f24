// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package game holds the pure game rules.

Evaluate classifies an N×N board (N from 3 to 10) as a win for X, a win for O,
a draw or undecided. Lines are checked rows first, then columns, the main
diagonal and the anti-diagonal; a full board without a complete line is a draw.

	outcome := game.Evaluate(board)

Local is the offline two-players-one-screen mode. Its board can be resized at
any time, which always starts a new empty game.
*/
package game
