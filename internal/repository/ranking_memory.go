package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

type memoryRanking struct {
	mu     sync.RWMutex
	scores map[string]int64
}

// NewMemoryRankingRepository - a ledger that lives as long as the process.
func NewMemoryRankingRepository() RankingRepository {
	return &memoryRanking{
		scores: map[string]int64{},
	}
}

func (that *memoryRanking) IncrementScore(_ context.Context, name string, points int64) (int64, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.scores[name] += points

	return that.scores[name], nil
}

func (that *memoryRanking) Top(_ context.Context, limit int) ([]entity.RankEntry, error) {
	that.mu.RLock()
	entries := make([]entity.RankEntry, 0, len(that.scores))
	for name, score := range that.scores {
		entries = append(entries, entity.RankEntry{Name: name, Score: score})
	}
	that.mu.RUnlock()

	return sortAndCut(entries, limit), nil
}

func (that *memoryRanking) Score(_ context.Context, name string) (int64, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	score, ok := that.scores[name]
	if !ok {
		return 0, ErrPlayerNotFound
	}

	return score, nil
}
