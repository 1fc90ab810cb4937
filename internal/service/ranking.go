package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

// WinPoints is what a single won game is worth in the ledger.
const WinPoints = 10

var ErrEmptyName = errors.New("player name is empty")

type RankingService interface {
	RecordWin(ctx context.Context, name string) error
	Leaderboard(ctx context.Context, limit int) ([]entity.RankEntry, error)
}

type rankingService struct {
	logger *slog.Logger

	rankingRepo rankingRepo
}

type rankingRepo interface {
	IncrementScore(ctx context.Context, name string, points int64) (int64, error)
	Top(ctx context.Context, limit int) ([]entity.RankEntry, error)
}

func NewRankingService(logger *slog.Logger, rankingRepo rankingRepo) RankingService {
	return &rankingService{
		logger:      logger.With("component", "ranking"),
		rankingRepo: rankingRepo,
	}
}

// RecordWin - credits name with WinPoints, creating the entry on first win.
func (that *rankingService) RecordWin(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	score, err := that.rankingRepo.IncrementScore(ctx, name, WinPoints)
	if err != nil {
		return fmt.Errorf("record win %w", err)
	}

	that.logger.Info("win recorded", "name", name, "score", score)

	return nil
}

func (that *rankingService) Leaderboard(ctx context.Context, limit int) ([]entity.RankEntry, error) {
	entries, err := that.rankingRepo.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard %w", err)
	}

	return entries, nil
}
