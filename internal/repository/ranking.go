package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

const rankingKey = "ranking"

var ErrPlayerNotFound = errors.New("player not found")

// RankingRepository stores the score ledger. Top returns the best entries first,
// equal scores ordered by name. A limit of zero or less returns every entry.
type RankingRepository interface {
	IncrementScore(ctx context.Context, name string, points int64) (int64, error)
	Top(ctx context.Context, limit int) ([]entity.RankEntry, error)
	Score(ctx context.Context, name string) (int64, error)
}

type dbRanking struct {
	client *redis.Client
}

// NewRankingRepository - the ledger as a redis sorted set.
func NewRankingRepository(client *redis.Client) RankingRepository {
	return &dbRanking{
		client: client,
	}
}

func (that *dbRanking) IncrementScore(ctx context.Context, name string, points int64) (int64, error) {
	score, err := that.client.ZIncrBy(ctx, rankingKey, float64(points), name).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment score: %w", err)
	}

	return int64(score), nil
}

func (that *dbRanking) Top(ctx context.Context, limit int) ([]entity.RankEntry, error) {
	members, err := that.client.ZRevRangeWithScores(ctx, rankingKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	entries := make([]entity.RankEntry, 0, len(members))
	for _, member := range members {
		name, ok := member.Member.(string)
		if !ok {
			continue
		}

		entries = append(entries, entity.RankEntry{Name: name, Score: int64(member.Score)})
	}

	return sortAndCut(entries, limit), nil
}

func (that *dbRanking) Score(ctx context.Context, name string) (int64, error) {
	score, err := that.client.ZScore(ctx, rankingKey, name).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrPlayerNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get score: %w", err)
	}

	return int64(score), nil
}

// sortAndCut - redis orders equal scores by reverse name, so ties are resorted here.
func sortAndCut(entries []entity.RankEntry, limit int) []entity.RankEntry {
	slices.SortStableFunc(entries, func(a, b entity.RankEntry) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries
}
