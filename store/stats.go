// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/tictac/models"
	"github.com/google/uuid"
)

// SumStats adds up all recorded outcomes.
func (s *Store) SumStats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(x), 0), COALESCE(SUM(o), 0), COALESCE(SUM(draw), 0)
		FROM stats
	`).Scan(&stats.X, &stats.O, &stats.Draw)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to sum stats: %w", err)
	}
	return stats, nil
}

// RecordOutcome stores one finished game.
func (s *Store) RecordOutcome(ctx context.Context, outcome models.Outcome) error {
	var x, o, draw int
	switch outcome {
	case models.XWins:
		x = 1
	case models.OWins:
		o = 1
	case models.Draw:
		draw = 1
	default:
		return ErrInvalidOutcome
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats (id, x, o, draw, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), x, o, draw, s.now())
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	slog.Info("outcome recorded", "winner", outcome.String())
	return nil
}

// ClearStats deletes every recorded outcome and returns how many were removed.
func (s *Store) ClearStats(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stats`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear stats: %w", err)
	}

	slog.Info("stats cleared", "rows", n)
	return n, nil
}
