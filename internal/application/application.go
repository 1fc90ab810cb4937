package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/config"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/console"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/repository"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/service"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/session"
	"github.com/rocketscienceinc/tictactoe-p2p/transport/peer"
)

const (
	leaderboardSize = 10
	shutdownTimeout = 5 * time.Second
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// Streams - the terminal the game is played on.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

// RunHost - opens a session as the initiator and plays it once the rival joins.
func RunHost(ctx context.Context, logger *slog.Logger, conf *config.Config, streams Streams) error {
	log := logger.With("component", "app", "method", "RunHost")

	ctx, cancel := withSignals(ctx, log)
	defer cancel()

	ranking, closeLedger, err := openLedger(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeLedger()

	ui := console.New(streams.Out, console.WithClearScreen(conf.ClearScreen))

	host := peer.NewHost(logger, peer.HostConfig{
		Bind:      conf.Host.Bind,
		Port:      conf.Host.Port,
		PublicURL: conf.Host.PublicURL,
	})

	if _, err = host.Open(ctx); err != nil {
		return fmt.Errorf("could not open host: %w", err)
	}

	qr, err := host.QRCode()
	if err != nil {
		log.Warn("could not render qr code", "error", err)
	}

	ui.ShowInvite(host.JoinLink(), qr)
	ui.Info("waiting for the rival to join...")

	conn, err := host.Accept(ctx)
	closeHost(logger, host)

	if err != nil {
		return fmt.Errorf("no rival joined: %w", err)
	}
	defer conn.Close()

	return runGame(ctx, logger, conf, entity.Initiator, conn, ranking, ui, streams.In)
}

// RunJoin - connects to the host behind link as the responder and plays.
func RunJoin(ctx context.Context, logger *slog.Logger, conf *config.Config, link string, streams Streams) error {
	log := logger.With("component", "app", "method", "RunJoin")

	ctx, cancel := withSignals(ctx, log)
	defer cancel()

	if _, _, err := peer.ParseJoinLink(link); err != nil {
		return err
	}

	ranking, closeLedger, err := openLedger(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeLedger()

	ui := console.New(streams.Out, console.WithClearScreen(conf.ClearScreen))
	ui.Info("connecting to " + link)

	dialCtx, cancelDial := context.WithTimeout(ctx, conf.DialTimeout)
	defer cancelDial()

	conn, err := peer.Dial(dialCtx, logger, link)
	if err != nil {
		return fmt.Errorf("could not join: %w", err)
	}
	defer conn.Close()

	return runGame(ctx, logger, conf, entity.Responder, conn, ranking, ui, streams.In)
}

// RunRanking - prints the leaderboard.
func RunRanking(ctx context.Context, logger *slog.Logger, conf *config.Config, out io.Writer) error {
	ranking, closeLedger, err := openLedger(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeLedger()

	entries, err := ranking.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return fmt.Errorf("could not read ranking: %w", err)
	}

	console.New(out).ShowLeaderboard(entries)

	return nil
}

func runGame(
	ctx context.Context,
	logger *slog.Logger,
	conf *config.Config,
	role entity.Role,
	conn session.Transport,
	ranking service.RankingService,
	ui *console.Console,
	in io.Reader,
) error {
	log := logger.With("component", "app", "method", "runGame")

	s := session.New(logger, role, conf.PlayerName, conn, ranking,
		session.WithObserver(ui),
		session.WithTrustRemoteMoves(conf.TrustRemoteMoves),
	)

	inputCtx, stopInput := context.WithCancel(ctx)
	defer stopInput()

	go func() {
		if err := console.ReadMoves(inputCtx, in, s.Play); err != nil && !errors.Is(err, context.Canceled) {
			log.Debug("input stopped", "error", err)
		}
	}()

	game, err := s.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			ui.ShowError(err)
		}

		return fmt.Errorf("game aborted: %w", err)
	}

	log.Info("game over", "winner", game.Winner, "won", game.IWon())

	entries, err := ranking.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		log.Warn("could not read ranking", "error", err)
		return nil
	}

	ui.ShowLeaderboard(entries)

	return nil
}

// openLedger - the ranking service over the configured storage and its closer.
func openLedger(ctx context.Context, logger *slog.Logger, conf *config.Config) (service.RankingService, func(), error) {
	log := logger.With("component", "app", "method", "openLedger")

	var (
		repo   repository.RankingRepository
		closer = func() {}
	)

	switch conf.Ledger.Driver {
	case config.LedgerRedis:
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		repo = repository.NewRankingRepository(redisStorage)
		closer = func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

	case config.LedgerSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Ledger.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		repo = repository.NewSQLiteRankingRepository(sqliteStorage.Connection)
		closer = func() {
			if err = sqliteStorage.Close(); err != nil {
				log.Error("could not close sqlite storage", "error", err)
			}
		}

	case config.LedgerMemory:
		repo = repository.NewMemoryRankingRepository()

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownLedger, conf.Ledger.Driver)
	}

	log.Debug("ledger opened", "driver", conf.Ledger.Driver)

	return service.NewRankingService(logger, repo), closer, nil
}

func withSignals(ctx context.Context, log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)

		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func closeHost(logger *slog.Logger, host *peer.Host) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := host.Close(ctx); err != nil {
		logger.Warn("could not close host", "error", err)
	}
}
