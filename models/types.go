// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Shared persistence errors. Both the SQL store and the HTTP client return these
// so callers can use errors.Is regardless of the backend in use.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrStaleWrite   = errors.New("room changed before the write was applied")
)

// Cell is the content of a board square, or the turn indicator.
type Cell uint8

const (
	Empty Cell = iota
	PlayerX
	PlayerO
	// Blocked means "no player". Only the turn field uses it; it is never on a board.
	Blocked
)

func (c Cell) String() string {
	switch c {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	case Blocked:
		return "--"
	default:
		return ""
	}
}

// Playable reports whether the cell holds an actual player mark.
func (c Cell) Playable() bool {
	return c == PlayerX || c == PlayerO
}

// Opponent returns the other player's symbol. Non-player cells map to Blocked.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Blocked
	}
}

// ParseCell converts the wire form back into a Cell.
func ParseCell(s string) (Cell, error) {
	switch s {
	case "":
		return Empty, nil
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	case "--":
		return Blocked, nil
	}
	return Empty, fmt.Errorf("invalid cell %q", s)
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseCell(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Board is a square grid indexed [row][col].
type Board [][]Cell

// Size returns N for an N×N board.
func (b Board) Size() int {
	return len(b)
}

// Clone returns a deep copy so callers can mutate freely.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// Marks counts the cells holding a player mark.
func (b Board) Marks() int {
	n := 0
	for _, row := range b {
		for _, c := range row {
			if c.Playable() {
				n++
			}
		}
	}
	return n
}

// Outcome classifies a board.
type Outcome uint8

const (
	Undecided Outcome = iota
	XWins
	OWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case XWins:
		return "X"
	case OWins:
		return "O"
	case Draw:
		return "Draw"
	default:
		return "None"
	}
}

// WinnerOutcome maps a winning mark to its outcome.
func WinnerOutcome(c Cell) Outcome {
	switch c {
	case PlayerX:
		return XWins
	case PlayerO:
		return OWins
	default:
		return Undecided
	}
}

// ParseOutcome converts the wire form back into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "", "None":
		return Undecided, nil
	case "X":
		return XWins, nil
	case "O":
		return OWins, nil
	case "Draw":
		return Draw, nil
	}
	return Undecided, fmt.Errorf("invalid outcome %q", s)
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Domain types

// Room is the record shared by the two participants of a match.
type Room struct {
	Code      string    `json:"code"`
	Board     Board     `json:"board_state"`
	BoardSize int       `json:"board_size"`
	Turn      Cell      `json:"current_turn"`
	GameOver  bool      `json:"is_game_over"`
	Outcome   Outcome   `json:"winner"`
	PlayerX   string    `json:"player_x,omitempty"`
	PlayerO   string    `json:"player_o,omitempty"`
	Moves     int       `json:"move_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SymbolOf returns the slot bound to playerID, or Blocked for spectators.
func (r Room) SymbolOf(playerID string) Cell {
	switch {
	case playerID == "":
		return Blocked
	case r.PlayerX == playerID:
		return PlayerX
	case r.PlayerO == playerID:
		return PlayerO
	}
	return Blocked
}

// Delta returns a change notification carrying every field of the room.
func (r Room) Delta() RoomDelta {
	board := r.Board.Clone()
	size, turn, over, outcome := r.BoardSize, r.Turn, r.GameOver, r.Outcome
	px, po, moves, updated := r.PlayerX, r.PlayerO, r.Moves, r.UpdatedAt
	return RoomDelta{
		Code:      r.Code,
		Board:     &board,
		BoardSize: &size,
		Turn:      &turn,
		GameOver:  &over,
		Outcome:   &outcome,
		PlayerX:   &px,
		PlayerO:   &po,
		Moves:     &moves,
		UpdatedAt: &updated,
	}
}

// Apply copies every field present in d onto r.
func (r *Room) Apply(d RoomDelta) {
	if d.Board != nil {
		r.Board = d.Board.Clone()
	}
	if d.BoardSize != nil {
		r.BoardSize = *d.BoardSize
	}
	if d.Turn != nil {
		r.Turn = *d.Turn
	}
	if d.GameOver != nil {
		r.GameOver = *d.GameOver
	}
	if d.Outcome != nil {
		r.Outcome = *d.Outcome
	}
	if d.PlayerX != nil {
		r.PlayerX = *d.PlayerX
	}
	if d.PlayerO != nil {
		r.PlayerO = *d.PlayerO
	}
	if d.Moves != nil {
		r.Moves = *d.Moves
	}
	if d.UpdatedAt != nil {
		r.UpdatedAt = *d.UpdatedAt
	}
}

// RoomDelta is a partial room; nil fields were not part of the change.
type RoomDelta struct {
	Code      string     `json:"code"`
	Board     *Board     `json:"board_state,omitempty"`
	BoardSize *int       `json:"board_size,omitempty"`
	Turn      *Cell      `json:"current_turn,omitempty"`
	GameOver  *bool      `json:"is_game_over,omitempty"`
	Outcome   *Outcome   `json:"winner,omitempty"`
	PlayerX   *string    `json:"player_x,omitempty"`
	PlayerO   *string    `json:"player_o,omitempty"`
	Moves     *int       `json:"move_count,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MoveCondition is the predicate a move write is conditional on. Board is the
// board the move was computed against.
type MoveCondition struct {
	Turn  Cell  `json:"turn"`
	Moves int   `json:"move_count"`
	Board Board `json:"board_state"`
}

// MoveWrite is the full set of fields a move replaces.
type MoveWrite struct {
	Board    Board   `json:"board_state"`
	Turn     Cell    `json:"current_turn"`
	GameOver bool    `json:"is_game_over"`
	Outcome  Outcome `json:"winner"`
	Moves    int     `json:"move_count"`
}

// Stats are the global win/draw tallies.
type Stats struct {
	X    int `json:"X"`
	O    int `json:"O"`
	Draw int `json:"Draw"`
}

// Request types

type CreateRoomRequest struct {
	BoardSize int    `json:"board_size"`
	PlayerID  string `json:"player_id"`
}

type JoinRoomRequest struct {
	PlayerID string `json:"player_id"`
}

type UpdateRoomRequest struct {
	Expect MoveCondition `json:"expect"`
	Set    MoveWrite     `json:"set"`
}

type RecordOutcomeRequest struct {
	Outcome Outcome `json:"outcome"`
}

// Response types

type CreateRoomResponse struct {
	Code string `json:"code"`
}

type JoinRoomResponse struct {
	Symbol Cell `json:"symbol"`
}

type ClearStatsResponse struct {
	Deleted int64 `json:"deleted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
