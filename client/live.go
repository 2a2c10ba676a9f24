// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/tictac/models"
	"github.com/gorilla/websocket"
)

const liveBuffer = 16

func (c *Client) liveURL(code string) string {
	u := c.baseURL + roomPath(code) + "/live"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// Subscribe opens the room's live stream. The channel closes when cancel is
// called, ctx ends or the connection drops.
func (c *Client) Subscribe(ctx context.Context, code string) (<-chan models.RoomDelta, func(), error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.liveURL(code), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil, models.ErrRoomNotFound
		}
		return nil, nil, fmt.Errorf("failed to open live stream: %w", err)
	}

	ch := make(chan models.RoomDelta, liveBuffer)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		defer close(ch)
		for {
			var delta models.RoomDelta
			if err := conn.ReadJSON(&delta); err != nil {
				var closeErr *websocket.CloseError
				if !errors.As(err, &closeErr) {
					select {
					case <-done:
					default:
						slog.Warn("live stream ended", "code", code, "error", err)
					}
				}
				return
			}
			select {
			case ch <- delta:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
			<-exited
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}
