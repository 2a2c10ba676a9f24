// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/models"
	"github.com/danielhkuo/tictac/room"
	"github.com/dustin/go-humanize"
)

// parseMove reads a 1-based "row col" pair and returns 0-based indexes.
func parseMove(line string) (int, int, error) {
	var row, col int
	if _, err := fmt.Sscanf(line, "%d %d", &row, &col); err != nil {
		return 0, 0, fmt.Errorf("enter a move as \"row col\", e.g. \"1 3\"")
	}
	return row - 1, col - 1, nil
}

func renderBoard(b models.Board) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := range b.Size() {
		fmt.Fprintf(&sb, "%3d", c+1)
	}
	sb.WriteString("\n")
	for r, row := range b {
		fmt.Fprintf(&sb, "%3d", r+1)
		for _, cell := range row {
			mark := cell.String()
			if cell == models.Empty {
				mark = "."
			}
			fmt.Fprintf(&sb, "%3s", mark)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func outcomeText(o models.Outcome) string {
	if o == models.Draw {
		return "It's a draw!"
	}
	return fmt.Sprintf("%s wins!", o)
}

// statusLine describes the room from the point of view of the local player.
func statusLine(snap room.Snapshot) string {
	r := snap.Room
	switch {
	case snap.State == room.Finished:
		return outcomeText(r.Outcome)
	case r.PlayerO == "":
		return "Waiting for an opponent to join"
	case r.Turn == snap.Symbol:
		return fmt.Sprintf("Your turn (%s)", snap.Symbol)
	default:
		return fmt.Sprintf("Waiting for %s", r.Turn)
	}
}

func renderSnapshot(snap room.Snapshot, now time.Time) string {
	if snap.State == room.NoRoom {
		return "No room\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nRoom %s, %dx%d, opened %s\n", snap.Room.Code, snap.Room.BoardSize, snap.Room.BoardSize,
		humanize.RelTime(snap.Room.CreatedAt, now, "ago", "from now"))
	sb.WriteString(renderBoard(snap.Room.Board))
	sb.WriteString(statusLine(snap))
	sb.WriteString("\n")
	return sb.String()
}

func renderLocal(g *game.Local) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nLocal game, %dx%d (+/- resize, r reset, q quit)\n", g.Size(), g.Size())
	sb.WriteString(renderBoard(g.Board()))
	if g.GameOver() {
		sb.WriteString(outcomeText(g.Outcome()))
	} else {
		fmt.Fprintf(&sb, "%s to move", g.Turn())
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatStats(s models.Stats) string {
	total := int64(s.X + s.O + s.Draw)
	return fmt.Sprintf("X wins: %s\nO wins: %s\nDraws:  %s\nGames:  %s\n",
		humanize.Comma(int64(s.X)), humanize.Comma(int64(s.O)), humanize.Comma(int64(s.Draw)), humanize.Comma(total))
}
