// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/ids"
	"github.com/danielhkuo/tictac/models"
)

var (
	ErrCreate = errors.New("failed to create room")
	ErrSync   = errors.New("failed to sync room")
	ErrClosed = errors.New("synchronizer is closed")
	ErrBusy   = errors.New("create or join already in progress")
)

// Backend is the persistence contract the synchronizer runs against.
type Backend interface {
	InsertRoom(ctx context.Context, room models.Room) (string, error)
	RoomByCode(ctx context.Context, code string) (models.Room, error)
	ClaimSlot(ctx context.Context, code, playerID string) (models.Cell, error)
	UpdateRoom(ctx context.Context, code string, cond models.MoveCondition, w models.MoveWrite) (models.Room, error)
	Subscribe(ctx context.Context, code string) (<-chan models.RoomDelta, func(), error)
}

// StatsRecorder receives the outcome of every game this client finishes.
type StatsRecorder interface {
	RecordOutcome(ctx context.Context, outcome models.Outcome) error
}

type State int

const (
	NoRoom State = iota
	Hosting
	Joining
	Active
	Finished
)

func (s State) String() string {
	switch s {
	case Hosting:
		return "hosting"
	case Joining:
		return "joining"
	case Active:
		return "active"
	case Finished:
		return "finished"
	default:
		return "no room"
	}
}

type MoveResult int

const (
	MoveIgnored MoveResult = iota
	MoveApplied
)

func (r MoveResult) String() string {
	if r == MoveApplied {
		return "applied"
	}
	return "ignored"
}

// Source tells whether an update came from this client or from the backend.
type Source int

const (
	FromLocal Source = iota
	FromRemote
)

// Snapshot is a copy of the synchronizer's view of its room.
type Snapshot struct {
	Room   models.Room
	Symbol models.Cell
	State  State
}

// RoomUpdated is emitted after every change to the local room.
type RoomUpdated struct {
	Snapshot
	Source Source
}

const (
	defaultEventBuffer = 32

	resubscribeMinDelay = 50 * time.Millisecond
	resubscribeMaxDelay = 5 * time.Second
)

type Option func(*Synchronizer)

// WithStats records finished games through r.
func WithStats(r StatsRecorder) Option {
	return func(s *Synchronizer) { s.stats = r }
}

// WithEventBuffer sets how many events may queue before the oldest are dropped.
func WithEventBuffer(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.bufSize = n
		}
	}
}

type subscription struct {
	code   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Synchronizer keeps one client's copy of a room in step with the backend.
// Each instance owns exactly one room at a time.
type Synchronizer struct {
	backend  Backend
	playerID string
	stats    StatsRecorder
	bufSize  int

	mu       sync.Mutex
	room     models.Room
	symbol   models.Cell
	state    State
	inFlight bool
	closed   bool
	sub      *subscription

	events chan RoomUpdated
}

// New creates a synchronizer acting as playerID.
func New(backend Backend, playerID string, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		backend:  backend,
		playerID: playerID,
		bufSize:  defaultEventBuffer,
		symbol:   models.Blocked,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = make(chan RoomUpdated, s.bufSize)
	return s
}

// Events delivers RoomUpdated events. The channel closes when the synchronizer does.
func (s *Synchronizer) Events() <-chan RoomUpdated {
	return s.events
}

// Snapshot returns a copy of the current room, symbol and state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	room := s.room
	room.Board = s.room.Board.Clone()
	return Snapshot{Room: room, Symbol: s.symbol, State: s.state}
}

// begin moves into a transitional state and returns the state to restore on failure.
func (s *Synchronizer) begin(next State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrClosed
	}
	if s.state == Hosting || s.state == Joining {
		return s.state, ErrBusy
	}
	prev := s.state
	s.state = next
	return prev, nil
}

func (s *Synchronizer) restore(prev State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == NoRoom {
		s.state = NoRoom
		return
	}
	// the previous room may have finished meanwhile
	s.state = stateOf(s.room)
}

// Create hosts a new room of the given size with this player as X.
// On ErrSync the room exists on the backend and its code is still returned.
func (s *Synchronizer) Create(ctx context.Context, boardSize int) (string, error) {
	if err := game.ValidateSize(boardSize); err != nil {
		return "", err
	}

	prev, err := s.begin(Hosting)
	if err != nil {
		return "", err
	}

	code, err := s.backend.InsertRoom(ctx, models.Room{
		Board:     game.NewBoard(boardSize),
		BoardSize: boardSize,
		Turn:      models.PlayerX,
		PlayerX:   s.playerID,
	})
	if err != nil {
		s.restore(prev)
		slog.Warn("room create failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrCreate, err)
	}

	if err := s.bind(ctx, code, models.PlayerX); err != nil {
		s.restore(prev)
		return code, err
	}

	slog.Info("hosting room", "code", code, "board_size", boardSize)
	return code, nil
}

// Join claims a slot in an existing room and returns the symbol bound to
// this player.
func (s *Synchronizer) Join(ctx context.Context, code string) (models.Cell, error) {
	code = ids.NormalizeRoomCode(code)

	prev, err := s.begin(Joining)
	if err != nil {
		return models.Empty, err
	}

	symbol, err := s.backend.ClaimSlot(ctx, code, s.playerID)
	if err != nil {
		s.restore(prev)
		return models.Empty, err
	}

	if err := s.bind(ctx, code, symbol); err != nil {
		s.restore(prev)
		return models.Empty, err
	}

	slog.Info("joined room", "code", code, "symbol", symbol.String())
	return symbol, nil
}

// bind subscribes to code, then refetches the room and makes it current. The
// subscription opens first so no update between the fetch and the first
// notification is lost.
func (s *Synchronizer) bind(ctx context.Context, code string, symbol models.Cell) error {
	subCtx, cancel := context.WithCancel(context.Background())
	ch, unsubscribe, err := s.backend.Subscribe(subCtx, code)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: subscribe to %s: %w", ErrSync, code, err)
	}

	room, err := s.backend.RoomByCode(ctx, code)
	if err != nil {
		cancel()
		unsubscribe()
		return fmt.Errorf("%w: fetch %s: %w", ErrSync, code, err)
	}

	sub := &subscription{code: code, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		unsubscribe()
		return ErrClosed
	}
	old := s.sub
	s.sub = sub
	s.room = room
	s.symbol = symbol
	s.state = stateOf(room)
	s.emitLocked(FromLocal)
	s.mu.Unlock()

	go s.watch(subCtx, sub, ch, unsubscribe)
	stop(old)

	return nil
}

func stop(sub *subscription) {
	if sub == nil {
		return
	}
	sub.cancel()
	<-sub.done
}

// watch forwards notifications for one room code until its context ends. A
// stream that closes underneath it is reopened with backoff, and the room is
// refetched so updates missed in between are not lost.
func (s *Synchronizer) watch(ctx context.Context, sub *subscription, ch <-chan models.RoomDelta, unsubscribe func()) {
	defer close(sub.done)

	delay := resubscribeMinDelay
	for {
		received := s.drain(ctx, sub, ch)
		unsubscribe()
		if ctx.Err() != nil {
			return
		}
		if received {
			delay = resubscribeMinDelay
		}
		slog.Warn("room subscription ended, resubscribing", "code", sub.code)

		var ok bool
		ch, unsubscribe, ok = s.resubscribe(ctx, sub, &delay)
		if !ok {
			return
		}
	}
}

// drain forwards deltas until ch closes or ctx ends and reports whether any
// arrived.
func (s *Synchronizer) drain(ctx context.Context, sub *subscription, ch <-chan models.RoomDelta) bool {
	received := false
	for {
		select {
		case <-ctx.Done():
			return received
		case delta, ok := <-ch:
			if !ok {
				return received
			}
			received = true
			s.forward(sub, delta)
		}
	}
}

// resubscribe repeats the subscribe-then-refetch order of bind until it
// succeeds or ctx ends.
func (s *Synchronizer) resubscribe(ctx context.Context, sub *subscription, delay *time.Duration) (<-chan models.RoomDelta, func(), bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil, false
		case <-time.After(*delay):
		}
		*delay = min(*delay*2, resubscribeMaxDelay)

		ch, unsubscribe, err := s.backend.Subscribe(ctx, sub.code)
		if err != nil {
			slog.Warn("resubscribe failed", "code", sub.code, "error", err)
			continue
		}
		room, err := s.backend.RoomByCode(ctx, sub.code)
		if err != nil {
			unsubscribe()
			slog.Warn("refetch after resubscribe failed", "code", sub.code, "error", err)
			continue
		}

		s.resync(sub, room)
		slog.Info("room subscription restored", "code", sub.code, "move_count", room.Moves)
		return ch, unsubscribe, true
	}
}

// resync replaces the local room with a fresh copy from the backend.
func (s *Synchronizer) resync(sub *subscription, room models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.sub != sub || room.Moves < s.room.Moves {
		return
	}
	s.room = room
	if s.state == Active || s.state == Finished {
		s.state = stateOf(room)
	}
	s.emitLocked(FromRemote)
}

func (s *Synchronizer) forward(sub *subscription, delta models.RoomDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.sub != sub {
		return
	}
	// notifications queued before the bind refetch can be older than it
	if delta.Moves != nil && *delta.Moves < s.room.Moves {
		return
	}
	s.applyLocked(delta)
}

// Reconcile applies every field present in delta to the local room. The
// backend is authoritative, so nothing is merged or checked. Deltas for a
// different room are ignored.
func (s *Synchronizer) Reconcile(delta models.RoomDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == NoRoom {
		return
	}
	if delta.Code != "" && delta.Code != s.room.Code {
		return
	}
	s.applyLocked(delta)
}

func (s *Synchronizer) applyLocked(delta models.RoomDelta) {
	s.room.Apply(delta)
	if s.state == Active || s.state == Finished {
		s.state = stateOf(s.room)
	}
	s.emitLocked(FromRemote)
}

func stateOf(room models.Room) State {
	if room.GameOver {
		return Finished
	}
	return Active
}

// emitLocked queues an event, discarding the oldest one if the buffer is full.
// Callers hold s.mu, so there is never more than one sender.
func (s *Synchronizer) emitLocked(src Source) {
	ev := RoomUpdated{Snapshot: s.snapshotLocked(), Source: src}
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

// SubmitMove places this player's mark at (row, col). Moves that are not
// allowed right now (no active game, occupied or out-of-range cell, not our
// turn, another move of ours still in flight, or a concurrent move won the
// race) return MoveIgnored with a nil error. Local state only changes after
// the backend accepted the write.
func (s *Synchronizer) SubmitMove(ctx context.Context, row, col int) (MoveResult, error) {
	s.mu.Lock()
	if s.closed || s.inFlight || s.state != Active {
		s.mu.Unlock()
		return MoveIgnored, nil
	}

	current := s.room
	if !game.InBounds(current.Board.Size(), row, col) || current.Board[row][col] != models.Empty {
		s.mu.Unlock()
		return MoveIgnored, nil
	}
	if !current.Turn.Playable() || current.SymbolOf(s.playerID) != current.Turn {
		s.mu.Unlock()
		return MoveIgnored, nil
	}

	board, outcome, err := game.Place(current.Board, row, col, current.Turn)
	if err != nil {
		s.mu.Unlock()
		return MoveIgnored, nil
	}

	cond := models.MoveCondition{Turn: current.Turn, Moves: current.Moves, Board: current.Board}
	write := models.MoveWrite{
		Board:   board,
		Turn:    current.Turn.Opponent(),
		Outcome: outcome,
		Moves:   current.Moves + 1,
	}
	if outcome != models.Undecided {
		write.GameOver = true
		write.Turn = models.Blocked
	}

	s.inFlight = true
	s.mu.Unlock()

	updated, err := s.backend.UpdateRoom(ctx, current.Code, cond, write)

	s.mu.Lock()
	s.inFlight = false
	if errors.Is(err, models.ErrStaleWrite) {
		s.mu.Unlock()
		slog.Info("move lost to a concurrent write", "code", current.Code, "row", row, "col", col)
		return MoveIgnored, nil
	}
	if err != nil {
		s.mu.Unlock()
		return MoveIgnored, fmt.Errorf("failed to submit move: %w", err)
	}

	// the notification for this write may already have been applied
	if !s.closed && s.room.Code == updated.Code && s.room.Moves < updated.Moves {
		s.room = updated
		s.state = stateOf(updated)
		s.emitLocked(FromLocal)
	}
	s.mu.Unlock()

	if outcome != models.Undecided {
		s.recordOutcome(ctx, current.Code, outcome)
	}

	return MoveApplied, nil
}

func (s *Synchronizer) recordOutcome(ctx context.Context, code string, outcome models.Outcome) {
	if s.stats == nil {
		return
	}
	if err := s.stats.RecordOutcome(ctx, outcome); err != nil {
		slog.Warn("failed to record outcome", "code", code, "winner", outcome.String(), "error", err)
	}
}

// Close tears down the room subscription and closes the event channel.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	stop(sub)
	close(s.events)
	return nil
}
