// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/tictac/models"
)

var (
	ErrInvalidRoom    = errors.New("invalid room")
	ErrInvalidWrite   = errors.New("invalid move write")
	ErrInvalidOutcome = errors.New("outcome must be X, O or Draw")
	ErrCodeExhausted  = errors.New("could not allocate a free room code")
)

// Notifier delivers room change notifications to subscribers of a room code.
type Notifier interface {
	Publish(ctx context.Context, delta models.RoomDelta) error
	Subscribe(code string) (<-chan models.RoomDelta, func())
	Close() error
}

// Store is the relational persistence layer for rooms and stats.
type Store struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

// New creates a store. A nil notifier falls back to an in-process Hub.
func New(db *sql.DB, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NewHub()
	}
	return &Store{
		db:       db,
		notifier: notifier,
		now: func() time.Time {
			// PostgreSQL TIMESTAMP keeps microseconds
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// Close shuts down the notifier. The connection pool is owned by the caller.
func (s *Store) Close() error {
	return s.notifier.Close()
}

// publish pushes the updated row to subscribers. The write is already committed
// at this point, so failures are logged rather than returned.
func (s *Store) publish(ctx context.Context, room models.Room) {
	if err := s.notifier.Publish(ctx, room.Delta()); err != nil {
		slog.Warn("failed to publish room update", "code", room.Code, "error", err)
	}
}
