// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/tictac/models"
)

// subscriberBuffer is how many undelivered updates a subscriber may lag behind.
const subscriberBuffer = 16

type subscriber struct {
	ch   chan models.RoomDelta
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans room updates out to in-process subscribers keyed by room code.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers for updates to code. The returned function removes the
// subscription and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(code string) (<-chan models.RoomDelta, func()) {
	sub := &subscriber{ch: make(chan models.RoomDelta, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.close()
		return sub.ch, func() {}
	}

	if h.subs[code] == nil {
		h.subs[code] = make(map[*subscriber]struct{})
	}
	h.subs[code][sub] = struct{}{}

	return sub.ch, func() { h.unsubscribe(code, sub) }
}

func (h *Hub) unsubscribe(code string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[code]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, code)
		}
	}
	sub.close()
}

// Publish delivers the update to every subscriber of its room.
func (h *Hub) Publish(_ context.Context, delta models.RoomDelta) error {
	h.Broadcast(delta)
	return nil
}

// Broadcast never blocks; a subscriber whose buffer is full misses the update.
func (h *Hub) Broadcast(delta models.RoomDelta) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[delta.Code] {
		select {
		case sub.ch <- delta:
		default:
			slog.Warn("dropping room update for slow subscriber", "code", delta.Code)
		}
	}
}

// Subscribers returns the number of live subscriptions for code.
func (h *Hub) Subscribers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[code])
}

// Close ends every subscription. Later subscriptions receive a closed channel.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.subs {
		for sub := range set {
			sub.close()
		}
	}
	h.subs = make(map[string]map[*subscriber]struct{})
	h.closed = true
	return nil
}
