// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/ids"
	"github.com/danielhkuo/tictac/models"
)

const maxCodeAttempts = 8

const roomColumns = `code, board_state, board_size, current_turn, is_game_over, winner,
	player_x, player_o, move_count, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (models.Room, error) {
	var (
		room                 models.Room
		boardJSON            string
		turn, winner, px, po sql.NullString
	)
	err := row.Scan(
		&room.Code, &boardJSON, &room.BoardSize, &turn, &room.GameOver, &winner,
		&px, &po, &room.Moves, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return models.Room{}, err
	}

	if err := json.Unmarshal([]byte(boardJSON), &room.Board); err != nil {
		return models.Room{}, fmt.Errorf("failed to decode board of room %s: %w", room.Code, err)
	}

	room.Turn = models.Blocked
	if turn.Valid {
		if room.Turn, err = models.ParseCell(turn.String); err != nil {
			return models.Room{}, err
		}
	}
	if winner.Valid {
		if room.Outcome, err = models.ParseOutcome(winner.String); err != nil {
			return models.Room{}, err
		}
	}
	room.PlayerX = px.String
	room.PlayerO = po.String

	return room, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// turnValue maps the turn to its column value; no turn is stored as NULL.
func turnValue(c models.Cell) sql.NullString {
	if !c.Playable() {
		return sql.NullString{}
	}
	return nullString(c.String())
}

func winnerValue(o models.Outcome) sql.NullString {
	if o == models.Undecided {
		return sql.NullString{}
	}
	return nullString(o.String())
}

// InsertRoom persists a new room and returns the code generated for it.
// The code field of room is ignored.
func (s *Store) InsertRoom(ctx context.Context, room models.Room) (string, error) {
	if err := game.ValidateSize(room.BoardSize); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRoom, err)
	}
	if room.Board == nil {
		room.Board = game.NewBoard(room.BoardSize)
	}
	if room.Board.Size() != room.BoardSize {
		return "", fmt.Errorf("%w: board is %dx%d, size says %d", ErrInvalidRoom, room.Board.Size(), room.Board.Size(), room.BoardSize)
	}

	boardJSON, err := json.Marshal(room.Board)
	if err != nil {
		return "", fmt.Errorf("failed to encode board: %w", err)
	}

	now := s.now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := ids.GenerateRoomCode()
		if err != nil {
			return "", err
		}

		res, err := s.db.ExecContext(ctx, `
			INSERT INTO room (code, board_state, board_size, current_turn, is_game_over, winner,
			                  player_x, player_o, move_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (code) DO NOTHING
		`, code, string(boardJSON), room.BoardSize, turnValue(room.Turn), room.GameOver,
			winnerValue(room.Outcome), nullString(room.PlayerX), nullString(room.PlayerO),
			room.Board.Marks(), now, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert room: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("failed to insert room: %w", err)
		}
		if n == 1 {
			slog.Info("room created", "code", code, "board_size", room.BoardSize, "player_x", room.PlayerX)
			return code, nil
		}

		slog.Warn("room code collision", "code", code, "attempt", attempt+1)
	}

	return "", ErrCodeExhausted
}

// RoomByCode loads a room.
func (s *Store) RoomByCode(ctx context.Context, code string) (models.Room, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM room WHERE code = $1`, code)
	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, models.ErrRoomNotFound
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to query room: %w", err)
	}
	return room, nil
}

func (s *Store) roomExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM room WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query room: %w", err)
	}
	return exists, nil
}

// ClaimSlot binds playerID to a free slot of the room in one atomic statement:
// X if it is unbound or already playerID's, else O if it is unbound or already
// playerID's. One identity never holds both slots and a bound slot never changes.
func (s *Store) ClaimSlot(ctx context.Context, code, playerID string) (models.Cell, error) {
	if playerID == "" {
		return models.Empty, fmt.Errorf("%w: player id is required", ErrInvalidRoom)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE room SET
			player_x = CASE
				WHEN player_x = $2 OR (player_x IS NULL AND (player_o IS NULL OR player_o <> $2)) THEN $2
				ELSE player_x END,
			player_o = CASE
				WHEN player_x = $2 OR (player_x IS NULL AND (player_o IS NULL OR player_o <> $2)) THEN player_o
				ELSE $2 END,
			updated_at = $3
		WHERE code = $1
		  AND (player_x = $2 OR player_x IS NULL OR player_o IS NULL OR player_o = $2)
		RETURNING `+roomColumns, code, playerID, s.now())

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		exists, err := s.roomExists(ctx, code)
		if err != nil {
			return models.Empty, err
		}
		if !exists {
			return models.Empty, models.ErrRoomNotFound
		}
		return models.Empty, models.ErrRoomFull
	}
	if err != nil {
		return models.Empty, fmt.Errorf("failed to claim slot: %w", err)
	}

	symbol := room.SymbolOf(playerID)
	slog.Info("player joined room", "code", code, "player_id", playerID, "symbol", symbol.String())
	s.publish(ctx, room)

	return symbol, nil
}

func validateWrite(cond models.MoveCondition, w models.MoveWrite) error {
	switch {
	case !cond.Turn.Playable():
		return fmt.Errorf("%w: expected turn must be X or O", ErrInvalidWrite)
	case w.Moves != cond.Moves+1:
		return fmt.Errorf("%w: a move adds exactly one mark", ErrInvalidWrite)
	case w.Board.Marks() != w.Moves:
		return fmt.Errorf("%w: board has %d marks, move_count says %d", ErrInvalidWrite, w.Board.Marks(), w.Moves)
	case cond.Board.Marks() != cond.Moves:
		return fmt.Errorf("%w: expected board has %d marks, move_count says %d", ErrInvalidWrite, cond.Board.Marks(), cond.Moves)
	case w.GameOver != (w.Outcome != models.Undecided):
		return fmt.Errorf("%w: is_game_over must match winner", ErrInvalidWrite)
	case w.GameOver && w.Turn.Playable():
		return fmt.Errorf("%w: finished games have no turn", ErrInvalidWrite)
	case !w.GameOver && w.Turn != cond.Turn.Opponent():
		return fmt.Errorf("%w: turn must pass to the other player", ErrInvalidWrite)
	case cond.Board.Size() != w.Board.Size():
		return fmt.Errorf("%w: board size changed", ErrInvalidWrite)
	}
	for i := range w.Board {
		if len(w.Board[i]) != len(w.Board) || len(cond.Board[i]) != len(cond.Board) {
			return fmt.Errorf("%w: board is not square", ErrInvalidWrite)
		}
	}

	// exactly one previously empty cell gains the mover's mark
	changed := 0
	for r := range w.Board {
		for c := range w.Board[r] {
			before, after := cond.Board[r][c], w.Board[r][c]
			if before == after {
				continue
			}
			if before != models.Empty || after != cond.Turn {
				return fmt.Errorf("%w: cell (%d, %d) cannot change from %q to %q", ErrInvalidWrite, r, c, before, after)
			}
			changed++
		}
	}
	if changed != 1 {
		return fmt.Errorf("%w: a move changes exactly one cell, got %d", ErrInvalidWrite, changed)
	}
	return nil
}

// UpdateRoom writes a move as one conditional update. The write only applies if
// the game is still running, it is cond.Turn's move and the stored board is
// still cond.Board; otherwise ErrStaleWrite is returned and nothing changes.
func (s *Store) UpdateRoom(ctx context.Context, code string, cond models.MoveCondition, w models.MoveWrite) (models.Room, error) {
	if err := validateWrite(cond, w); err != nil {
		return models.Room{}, err
	}

	boardJSON, err := json.Marshal(w.Board)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to encode board: %w", err)
	}
	prevJSON, err := json.Marshal(cond.Board)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to encode board: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE room SET
			board_state = $1,
			current_turn = $2,
			is_game_over = $3,
			winner = $4,
			move_count = $5,
			updated_at = $6
		WHERE code = $7
		  AND is_game_over = FALSE
		  AND current_turn = $8
		  AND move_count = $9
		  AND board_size = $10
		  AND board_state = $11
		RETURNING `+roomColumns,
		string(boardJSON), turnValue(w.Turn), w.GameOver, winnerValue(w.Outcome), w.Moves, s.now(),
		code, cond.Turn.String(), cond.Moves, w.Board.Size(), string(prevJSON))

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		exists, err := s.roomExists(ctx, code)
		if err != nil {
			return models.Room{}, err
		}
		if !exists {
			return models.Room{}, models.ErrRoomNotFound
		}
		return models.Room{}, models.ErrStaleWrite
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to update room: %w", err)
	}

	slog.Info("move stored", "code", code, "move_count", room.Moves, "winner", room.Outcome.String())
	s.publish(ctx, room)

	return room, nil
}

// Subscribe streams every update of the room's row until cancel is called.
func (s *Store) Subscribe(ctx context.Context, code string) (<-chan models.RoomDelta, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.notifier.Subscribe(code)
	return ch, cancel, nil
}
