// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/tictac/models"
	"github.com/gorilla/websocket"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response that has no sentinel error of its own.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to a tictac server over HTTP and WebSocket.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// New creates a client for the server at baseURL, e.g. http://localhost:3318.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return models.ErrRoomNotFound
	case http.StatusConflict:
		return models.ErrRoomFull
	case http.StatusPreconditionFailed:
		return models.ErrStaleWrite
	}

	var body models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

func roomPath(code string) string {
	return "/rooms/" + url.PathEscape(code)
}

// InsertRoom creates a room hosted by room.PlayerX. The server chooses the
// board and code; only the size and host are sent.
func (c *Client) InsertRoom(ctx context.Context, room models.Room) (string, error) {
	var resp models.CreateRoomResponse
	err := c.do(ctx, http.MethodPost, "/rooms", models.CreateRoomRequest{
		BoardSize: room.BoardSize,
		PlayerID:  room.PlayerX,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Code, nil
}

func (c *Client) RoomByCode(ctx context.Context, code string) (models.Room, error) {
	var room models.Room
	if err := c.do(ctx, http.MethodGet, roomPath(code), nil, &room); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

func (c *Client) ClaimSlot(ctx context.Context, code, playerID string) (models.Cell, error) {
	var resp models.JoinRoomResponse
	err := c.do(ctx, http.MethodPost, roomPath(code)+"/join", models.JoinRoomRequest{PlayerID: playerID}, &resp)
	if err != nil {
		return models.Empty, err
	}
	return resp.Symbol, nil
}

func (c *Client) UpdateRoom(ctx context.Context, code string, cond models.MoveCondition, w models.MoveWrite) (models.Room, error) {
	var room models.Room
	err := c.do(ctx, http.MethodPatch, roomPath(code), models.UpdateRoomRequest{Expect: cond, Set: w}, &room)
	if err != nil {
		return models.Room{}, err
	}
	return room, nil
}

func (c *Client) SumStats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

func (c *Client) RecordOutcome(ctx context.Context, outcome models.Outcome) error {
	return c.do(ctx, http.MethodPost, "/stats", models.RecordOutcomeRequest{Outcome: outcome}, nil)
}

func (c *Client) ClearStats(ctx context.Context) (int64, error) {
	var resp models.ClearStatsResponse
	if err := c.do(ctx, http.MethodDelete, "/stats", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}
