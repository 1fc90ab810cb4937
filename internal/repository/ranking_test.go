package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-p2p/testing/suite"
)

func TestRankingRepository_Redis(t *testing.T) {
	ctx, st := suite.New(t)

	testRankingRepository(ctx, t, NewRankingRepository(st.Storage))
}

func TestRankingRepository_Memory(t *testing.T) {
	testRankingRepository(context.Background(), t, NewMemoryRankingRepository())
}

func TestRankingRepository_SQLite(t *testing.T) {
	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ranking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Init(ctx))
	require.NoError(t, db.Init(ctx), "init must be repeatable")

	testRankingRepository(ctx, t, NewSQLiteRankingRepository(db.Connection))
}

func testRankingRepository(ctx context.Context, t *testing.T, repo RankingRepository) {
	t.Helper()

	t.Run("Empty ledger", func(t *testing.T) {
		entries, err := repo.Top(ctx, 10)

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Score of an unknown player", func(t *testing.T) {
		_, err := repo.Score(ctx, "nobody")

		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("Increment inserts and accumulates", func(t *testing.T) {
		// When: Ana wins twice
		score, err := repo.IncrementScore(ctx, "Ana", 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), score)

		score, err = repo.IncrementScore(ctx, "Ana", 10)
		require.NoError(t, err)
		assert.Equal(t, int64(20), score)

		// Then: the stored score is the sum
		stored, err := repo.Score(ctx, "Ana")
		require.NoError(t, err)
		assert.Equal(t, int64(20), stored)
	})

	t.Run("Top is ordered by score then name", func(t *testing.T) {
		// Given: Ana 20, Bruno 10, Carla 10, Davi 30
		_, err := repo.IncrementScore(ctx, "Carla", 10)
		require.NoError(t, err)
		_, err = repo.IncrementScore(ctx, "Bruno", 10)
		require.NoError(t, err)
		_, err = repo.IncrementScore(ctx, "Davi", 30)
		require.NoError(t, err)

		// When: the full ranking is requested
		entries, err := repo.Top(ctx, 0)

		// Then: the best come first and ties are alphabetical
		require.NoError(t, err)
		assert.Equal(t, []entity.RankEntry{
			{Name: "Davi", Score: 30},
			{Name: "Ana", Score: 20},
			{Name: "Bruno", Score: 10},
			{Name: "Carla", Score: 10},
		}, entries)
	})

	t.Run("Top respects the limit", func(t *testing.T) {
		entries, err := repo.Top(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, []entity.RankEntry{
			{Name: "Davi", Score: 30},
			{Name: "Ana", Score: 20},
		}, entries)
	})
}
