// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"testing"

	"github.com/danielhkuo/tictac/models"
	"github.com/danielhkuo/tictac/store"
	"github.com/danielhkuo/tictac/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	stats, err := s.SumStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)

	for _, o := range []models.Outcome{models.XWins, models.XWins, models.OWins, models.Draw} {
		require.NoError(t, s.RecordOutcome(ctx, o))
	}

	stats, err = s.SumStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{X: 2, O: 1, Draw: 1}, stats)

	n, err := s.ClearStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	stats, err = s.SumStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)
}

func TestSumStatsAddsExistingRows(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn, nil)

	testutil.RecordTestOutcomes(t, conn, models.Draw, models.Draw, models.OWins)

	stats, err := s.SumStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{O: 1, Draw: 2}, stats)
}

func TestRecordOutcomeRejectsUndecided(t *testing.T) {
	s := newStore(t)

	err := s.RecordOutcome(context.Background(), models.Undecided)
	assert.ErrorIs(t, err, store.ErrInvalidOutcome)
}
