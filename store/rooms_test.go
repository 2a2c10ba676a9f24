// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/models"
	"github.com/danielhkuo/tictac/store"
	"github.com/danielhkuo/tictac/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(testutil.SetupTestDB(t), nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRoom(size int, host string) models.Room {
	return models.Room{
		Board:     game.NewBoard(size),
		BoardSize: size,
		Turn:      models.PlayerX,
		PlayerX:   host,
	}
}

// moveWrite builds the write for mark at (row, col) on top of room.
func moveWrite(t *testing.T, room models.Room, row, col int, mark models.Cell) (models.MoveCondition, models.MoveWrite) {
	t.Helper()
	board, outcome, err := game.Place(room.Board, row, col, mark)
	require.NoError(t, err)

	w := models.MoveWrite{
		Board:   board,
		Turn:    mark.Opponent(),
		Outcome: outcome,
		Moves:   room.Moves + 1,
	}
	if outcome != models.Undecided {
		w.GameOver = true
		w.Turn = models.Blocked
	}
	return models.MoveCondition{Turn: mark, Moves: room.Moves, Board: room.Board}, w
}

func TestInsertAndLoadRoom(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(4, "host"))
	require.NoError(t, err)
	assert.Len(t, code, 6)

	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)

	assert.Equal(t, code, room.Code)
	assert.Equal(t, 4, room.BoardSize)
	assert.Equal(t, game.NewBoard(4), room.Board)
	assert.Equal(t, models.PlayerX, room.Turn)
	assert.False(t, room.GameOver)
	assert.Equal(t, models.Undecided, room.Outcome)
	assert.Equal(t, "host", room.PlayerX)
	assert.Empty(t, room.PlayerO)
	assert.Zero(t, room.Moves)
	assert.WithinDuration(t, time.Now(), room.CreatedAt, time.Minute)
}

func TestInsertRoomGeneratesDistinctCodes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := s.InsertRoom(ctx, newRoom(3, "host"))
		require.NoError(t, err)
		require.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestInsertRoomRejectsBadBoards(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.InsertRoom(ctx, newRoom(2, "host"))
	assert.ErrorIs(t, err, store.ErrInvalidRoom)

	_, err = s.InsertRoom(ctx, newRoom(11, "host"))
	assert.ErrorIs(t, err, store.ErrInvalidRoom)

	mismatched := newRoom(3, "host")
	mismatched.BoardSize = 5
	_, err = s.InsertRoom(ctx, mismatched)
	assert.ErrorIs(t, err, store.ErrInvalidRoom)
}

func TestRoomByCodeNotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.RoomByCode(context.Background(), "NOPE99")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestClaimSlot(t *testing.T) {
	tests := []struct {
		name    string
		playerX string
		playerO string
		joiner  string
		want    models.Cell
		wantErr error
		wantX   string
		wantO   string
	}{
		{name: "empty room binds X", joiner: "a", want: models.PlayerX, wantX: "a"},
		{name: "host rejoins as X", playerX: "a", joiner: "a", want: models.PlayerX, wantX: "a"},
		{name: "second player gets O", playerX: "a", joiner: "b", want: models.PlayerO, wantX: "a", wantO: "b"},
		{name: "O rejoins as O", playerX: "a", playerO: "b", joiner: "b", want: models.PlayerO, wantX: "a", wantO: "b"},
		{name: "third player is rejected", playerX: "a", playerO: "b", joiner: "c", wantErr: models.ErrRoomFull, wantX: "a", wantO: "b"},
		{name: "O holder never takes X too", playerO: "b", joiner: "b", want: models.PlayerO, wantO: "b"},
		{name: "free X with O bound", playerO: "b", joiner: "a", want: models.PlayerX, wantX: "a", wantO: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)
			s := store.New(conn, nil)
			ctx := context.Background()

			code := testutil.CreateTestRoom(t, conn, 3, "")
			testutil.SetTestRoomPlayers(t, conn, code, tt.playerX, tt.playerO)

			got, err := s.ClaimSlot(ctx, code, tt.joiner)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			room, err := s.RoomByCode(ctx, code)
			require.NoError(t, err)
			assert.Equal(t, tt.wantX, room.PlayerX)
			assert.Equal(t, tt.wantO, room.PlayerO)
		})
	}
}

func TestClaimSlotMissingRoom(t *testing.T) {
	s := newStore(t)

	_, err := s.ClaimSlot(context.Background(), "ZZZZZZ", "a")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestClaimSlotConcurrentJoinersGetDistinctSlots(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn, nil)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		code := testutil.CreateTestRoom(t, conn, 3, "")

		var wg sync.WaitGroup
		symbols := make([]models.Cell, 2)
		errs := make([]error, 2)
		for i, id := range []string{"alice", "bob"} {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				symbols[i], errs[i] = s.ClaimSlot(ctx, code, id)
			}(i, id)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.ElementsMatch(t, []models.Cell{models.PlayerX, models.PlayerO}, symbols)
	}
}

func TestClaimSlotOnlyOneOfManyJoinersWins(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn, nil)
	ctx := context.Background()

	code := testutil.CreateTestRoom(t, conn, 3, "host")

	const joiners = 8
	var wg sync.WaitGroup
	var won, full atomic.Int32
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sym, err := s.ClaimSlot(ctx, code, string(rune('a'+i)))
			switch {
			case err == nil && sym == models.PlayerO:
				won.Add(1)
			case errors.Is(err, models.ErrRoomFull):
				full.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
	assert.Equal(t, int32(joiners-1), full.Load())
}

func TestUpdateRoomAppliesMove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)
	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)

	cond, w := moveWrite(t, room, 1, 1, models.PlayerX)
	updated, err := s.UpdateRoom(ctx, code, cond, w)
	require.NoError(t, err)

	assert.Equal(t, models.PlayerX, updated.Board[1][1])
	assert.Equal(t, models.PlayerO, updated.Turn)
	assert.Equal(t, 1, updated.Moves)
	assert.False(t, updated.GameOver)

	reloaded, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, updated.Board, reloaded.Board)
	assert.Equal(t, updated.Moves, reloaded.Moves)
}

func TestUpdateRoomFinishesGame(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)

	moves := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}}
	mark := models.PlayerX
	var room models.Room
	for _, m := range moves {
		room, err = s.RoomByCode(ctx, code)
		require.NoError(t, err)
		cond, w := moveWrite(t, room, m[0], m[1], mark)
		room, err = s.UpdateRoom(ctx, code, cond, w)
		require.NoError(t, err)
		mark = mark.Opponent()
	}

	assert.True(t, room.GameOver)
	assert.Equal(t, models.XWins, room.Outcome)
	assert.Equal(t, models.Blocked, room.Turn)

	// no further writes once the game is over
	cond := models.MoveCondition{Turn: models.PlayerO, Moves: room.Moves, Board: room.Board}
	board, _, err := game.Place(room.Board, 2, 2, models.PlayerO)
	require.NoError(t, err)
	_, err = s.UpdateRoom(ctx, code, cond, models.MoveWrite{
		Board: board, Turn: models.PlayerX, Moves: room.Moves + 1,
	})
	assert.ErrorIs(t, err, models.ErrStaleWrite)
}

func TestUpdateRoomStaleWrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)
	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)

	t.Run("wrong turn", func(t *testing.T) {
		cond, w := moveWrite(t, room, 0, 0, models.PlayerO)
		_, err := s.UpdateRoom(ctx, code, cond, w)
		assert.ErrorIs(t, err, models.ErrStaleWrite)
	})

	t.Run("lost race", func(t *testing.T) {
		cond, w := moveWrite(t, room, 0, 0, models.PlayerX)
		_, err := s.UpdateRoom(ctx, code, cond, w)
		require.NoError(t, err)

		// the same precondition no longer holds
		cond, w = moveWrite(t, room, 2, 2, models.PlayerX)
		_, err = s.UpdateRoom(ctx, code, cond, w)
		assert.ErrorIs(t, err, models.ErrStaleWrite)
	})

	after, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Moves)
	assert.Equal(t, models.PlayerX, after.Board[0][0])
	assert.Equal(t, models.Empty, after.Board[2][2])
}

func TestUpdateRoomConcurrentWritersOneWins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)
	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)

	conds := make([]models.MoveCondition, 3)
	writes := make([]models.MoveWrite, 3)
	for col := range writes {
		conds[col], writes[col] = moveWrite(t, room, 0, col, models.PlayerX)
	}

	var wg sync.WaitGroup
	var applied, stale atomic.Int32
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			_, err := s.UpdateRoom(ctx, code, conds[col], writes[col])
			switch {
			case err == nil:
				applied.Add(1)
			case errors.Is(err, models.ErrStaleWrite):
				stale.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	assert.Equal(t, int32(2), stale.Load())

	after, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Board.Marks())
}

func TestUpdateRoomRejectsInconsistentWrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)
	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)

	cond, valid := moveWrite(t, room, 0, 0, models.PlayerX)

	tests := []struct {
		name   string
		mutate func(w *models.MoveWrite)
	}{
		{"skips a move count", func(w *models.MoveWrite) { w.Moves = 2 }},
		{"turn not passed", func(w *models.MoveWrite) { w.Turn = models.PlayerX }},
		{"over without winner", func(w *models.MoveWrite) { w.GameOver = true }},
		{"extra mark", func(w *models.MoveWrite) { w.Board[2][2] = models.PlayerO }},
		{"ragged board", func(w *models.MoveWrite) { w.Board[1] = w.Board[1][:2] }},
		{"mark of the other player", func(w *models.MoveWrite) { w.Board[0][0] = models.PlayerO }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			w.Board = valid.Board.Clone()
			tt.mutate(&w)
			_, err := s.UpdateRoom(ctx, code, cond, w)
			assert.ErrorIs(t, err, store.ErrInvalidWrite)
		})
	}

	t.Run("wrong board size", func(t *testing.T) {
		big := newRoom(4, "host")
		c, w := moveWrite(t, big, 0, 0, models.PlayerX)
		_, err := s.UpdateRoom(ctx, code, c, w)
		assert.ErrorIs(t, err, models.ErrStaleWrite)
	})

	after, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Moves)
}

func TestUpdateRoomCellsAreWrittenOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)
	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)

	cond, w := moveWrite(t, room, 0, 0, models.PlayerX)
	room, err = s.UpdateRoom(ctx, code, cond, w)
	require.NoError(t, err)

	t.Run("overwriting the opponent's mark", func(t *testing.T) {
		board := room.Board.Clone()
		board[0][0] = models.PlayerO
		board[1][1] = models.PlayerO
		_, err := s.UpdateRoom(ctx, code,
			models.MoveCondition{Turn: models.PlayerO, Moves: 1, Board: room.Board},
			models.MoveWrite{Board: board, Turn: models.PlayerX, Moves: 2})
		assert.ErrorIs(t, err, store.ErrInvalidWrite)
	})

	t.Run("computed against a different board", func(t *testing.T) {
		claimed := newRoom(3, "host")
		claimed.Board[2][2] = models.PlayerX
		claimed.Moves = 1
		c, w := moveWrite(t, claimed, 0, 0, models.PlayerO)
		_, err := s.UpdateRoom(ctx, code, c, w)
		assert.ErrorIs(t, err, models.ErrStaleWrite)
	})

	after, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, models.PlayerX, after.Board[0][0])
	assert.Equal(t, models.Empty, after.Board[1][1])
	assert.Equal(t, models.Empty, after.Board[2][2])
	assert.Equal(t, 1, after.Moves)
}

func TestUpdateRoomMissingRoom(t *testing.T) {
	s := newStore(t)

	cond, w := moveWrite(t, newRoom(3, "host"), 0, 0, models.PlayerX)
	_, err := s.UpdateRoom(context.Background(), "ZZZZZZ", cond, w)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func receive(t *testing.T, ch <-chan models.RoomDelta) models.RoomDelta {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room update")
	}
	return models.RoomDelta{}
}

func TestSubscribeReceivesJoinsAndMoves(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)
	other, err := s.InsertRoom(ctx, newRoom(3, "host"))
	require.NoError(t, err)

	ch, cancel, err := s.Subscribe(ctx, code)
	require.NoError(t, err)
	defer cancel()

	// updates to other rooms are not delivered
	_, err = s.ClaimSlot(ctx, other, "guest")
	require.NoError(t, err)

	_, err = s.ClaimSlot(ctx, code, "guest")
	require.NoError(t, err)
	d := receive(t, ch)
	assert.Equal(t, code, d.Code)
	require.NotNil(t, d.PlayerO)
	assert.Equal(t, "guest", *d.PlayerO)

	room, err := s.RoomByCode(ctx, code)
	require.NoError(t, err)
	cond, w := moveWrite(t, room, 2, 1, models.PlayerX)
	_, err = s.UpdateRoom(ctx, code, cond, w)
	require.NoError(t, err)

	d = receive(t, ch)
	require.NotNil(t, d.Board)
	assert.Equal(t, models.PlayerX, (*d.Board)[2][1])
	require.NotNil(t, d.Moves)
	assert.Equal(t, 1, *d.Moves)

	cancel()
	_, ok := <-ch
	assert.False(t, ok, "channel should close on cancel")
}

func TestSubscribeCanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Subscribe(ctx, "ABCDEF")
	assert.ErrorIs(t, err, context.Canceled)
}
