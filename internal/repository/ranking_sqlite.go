package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

type sqliteRanking struct {
	conn *sql.DB
}

// NewSQLiteRankingRepository - a ledger kept in a local database file. The ranking table
// is created by storage.Storage.Init.
func NewSQLiteRankingRepository(conn *sql.DB) RankingRepository {
	return &sqliteRanking{
		conn: conn,
	}
}

func (that *sqliteRanking) IncrementScore(ctx context.Context, name string, points int64) (int64, error) {
	query := `INSERT INTO ranking (name, score) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET score = score + excluded.score
		RETURNING score`

	var score int64
	if err := that.conn.QueryRowContext(ctx, query, name, points).Scan(&score); err != nil {
		return 0, fmt.Errorf("can't increment score: %w", err)
	}

	return score, nil
}

func (that *sqliteRanking) Top(ctx context.Context, limit int) ([]entity.RankEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT name, score FROM ranking ORDER BY score DESC, name ASC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't get ranking: %w", err)
	}
	defer rows.Close()

	entries := []entity.RankEntry{}
	for rows.Next() {
		var entry entity.RankEntry
		if err = rows.Scan(&entry.Name, &entry.Score); err != nil {
			return nil, fmt.Errorf("can't scan ranking row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read ranking: %w", err)
	}

	return entries, nil
}

func (that *sqliteRanking) Score(ctx context.Context, name string) (int64, error) {
	query := `SELECT score FROM ranking WHERE name = ?`

	var score int64

	err := that.conn.QueryRowContext(ctx, query, name).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("can't get score: %w", err)
	}

	return score, nil
}
