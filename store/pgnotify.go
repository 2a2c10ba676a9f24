// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/tictac/models"
	"github.com/lib/pq"
)

// NotifyChannel is the PostgreSQL channel room updates are published on.
const NotifyChannel = "room_updates"

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	listenerPingInterval = 90 * time.Second
)

// PGNotifier publishes room updates with NOTIFY and feeds the updates it hears
// back through LISTEN into a local Hub, so every server process connected to
// the same database sees every write.
type PGNotifier struct {
	db       *sql.DB
	listener *pq.Listener
	hub      *Hub
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	closeErr error
}

// NewPGNotifier opens a dedicated listener connection on dsn.
func NewPGNotifier(db *sql.DB, dsn string) (*PGNotifier, error) {
	listener := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				slog.Warn("notification listener event", "event", int(ev), "error", err)
			}
		})

	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}

	n := &PGNotifier{
		db:       db,
		listener: listener,
		hub:      NewHub(),
		done:     make(chan struct{}),
	}

	n.wg.Add(1)
	go n.run()

	slog.Info("listening for room updates", "channel", NotifyChannel)
	return n, nil
}

func (n *PGNotifier) run() {
	defer n.wg.Done()

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.done:
			return
		case note, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			if note == nil {
				// reconnected; anything sent while disconnected is lost
				slog.Warn("notification listener reconnected")
				continue
			}
			var delta models.RoomDelta
			if err := json.Unmarshal([]byte(note.Extra), &delta); err != nil {
				slog.Error("failed to decode room update", "error", err)
				continue
			}
			n.hub.Broadcast(delta)
		case <-ticker.C:
			go func() {
				if err := n.listener.Ping(); err != nil {
					slog.Warn("notification listener ping failed", "error", err)
				}
			}()
		}
	}
}

// Publish sends the update through pg_notify. Local subscribers receive it once
// it comes back through the listener.
func (n *PGNotifier) Publish(ctx context.Context, delta models.RoomDelta) error {
	payload, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("failed to encode room update: %w", err)
	}
	if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

func (n *PGNotifier) Subscribe(code string) (<-chan models.RoomDelta, func()) {
	return n.hub.Subscribe(code)
}

// Close stops the listener and ends every subscription. Later calls are no-ops.
func (n *PGNotifier) Close() error {
	n.once.Do(func() {
		close(n.done)
		n.closeErr = n.listener.Close()
		n.wg.Wait()
		n.hub.Close()
	})
	return n.closeErr
}
