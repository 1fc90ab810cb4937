package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/tictactoe"
)

var (
	ErrAlreadyRunning = errors.New("session is already running")
	ErrSessionClosed  = errors.New("session is closed")
)

// Transport is the point-to-point link between the two peers.
type Transport interface {
	Send(ctx context.Context, msg protocol.Message) error
	Deliveries() <-chan protocol.Delivery
	Close() error
}

// ScoreLedger is credited when the local side wins.
type ScoreLedger interface {
	RecordWin(ctx context.Context, name string) error
}

// Observer receives a copy of the game after every state change.
type Observer interface {
	GameUpdated(game entity.Game)
}

type ObserverFunc func(game entity.Game)

func (f ObserverFunc) GameUpdated(game entity.Game) {
	f(game)
}

type Option func(*Session)

func WithObserver(observer Observer) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

// WithTrustRemoteMoves - when enabled, moves from the peer skip turn and mark checks and are
// only rejected by the board itself.
func WithTrustRemoteMoves(trust bool) Option {
	return func(s *Session) {
		s.trustRemoteMoves = trust
	}
}

type moveRequest struct {
	cell   int
	result chan error
}

// Session owns one game between the local player and the peer. All mutations of the game
// happen on the goroutine executing Run.
type Session struct {
	logger *slog.Logger

	role      entity.Role
	name      string
	transport Transport
	ledger    ScoreLedger

	observer         Observer
	trustRemoteMoves bool

	running atomic.Bool
	moves   chan moveRequest
	done    chan struct{}

	game *entity.Game
}

func New(logger *slog.Logger, role entity.Role, name string, transport Transport, ledger ScoreLedger, opts ...Option) *Session {
	s := &Session{
		logger:    logger.With("component", "session", "role", role.String()),
		role:      role,
		name:      name,
		transport: transport,
		ledger:    ledger,
		observer:  ObserverFunc(func(entity.Game) {}),
		moves:     make(chan moveRequest),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run - announces the local name and plays until the game is finished, the peer is lost or
// ctx is cancelled. The finished game is returned; on connection loss the game is discarded.
func (that *Session) Run(ctx context.Context) (*entity.Game, error) {
	log := that.logger.With("method", "Run")

	if !that.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer close(that.done)

	that.game = entity.NewGame(that.role.Mark())
	if err := that.game.SetPlayerName(that.game.MySymbol, that.name); err != nil {
		return nil, fmt.Errorf("failed to record own name: %w", err)
	}
	that.notify()

	if err := that.transport.Send(ctx, protocol.Name{Name: that.name}); err != nil {
		return nil, fmt.Errorf("failed to send name: %w", sendFailure(err))
	}

	log.Info("session started", "name", that.name, "mark", that.game.MySymbol)

	deliveries := that.transport.Deliveries()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case req := <-that.moves:
			if err := that.playLocal(ctx, req); err != nil {
				return nil, err
			}

		case delivery, ok := <-deliveries:
			if !ok {
				return nil, fmt.Errorf("%w: transport closed", apperror.ErrConnectionLost)
			}

			if err := that.handleDelivery(delivery); err != nil {
				return nil, err
			}
		}

		if that.game.IsFinished() {
			that.finish(ctx)

			final := that.game.Clone()
			return &final, nil
		}
	}
}

// Play - submits a local move. Rejected moves return an error and nothing reaches the peer.
func (that *Session) Play(ctx context.Context, cell int) error {
	req := moveRequest{cell: cell, result: make(chan error, 1)}

	select {
	case that.moves <- req:
	case <-that.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// playLocal - answers req. A rejected move only fails the request; an error is returned
// when the move was applied but could not reach the peer.
func (that *Session) playLocal(ctx context.Context, req moveRequest) error {
	log := that.logger.With("method", "playLocal")

	if err := tictactoe.ValidateLocalMove(that.game, req.cell); err != nil {
		log.Debug("local move rejected", "cell", req.cell, "error", err)
		req.result <- err
		return nil
	}

	if err := tictactoe.ApplyMove(that.game, that.game.MySymbol, req.cell); err != nil {
		req.result <- fmt.Errorf("failed to apply move: %w", err)
		return nil
	}
	that.notify()

	if err := that.transport.Send(ctx, protocol.Move{Index: req.cell, Symbol: that.game.MySymbol}); err != nil {
		log.Error("failed to send move", "cell", req.cell, "error", err)

		err = fmt.Errorf("failed to send move: %w", sendFailure(err))
		req.result <- err
		return err
	}

	req.result <- nil
	return nil
}

func (that *Session) handleDelivery(delivery protocol.Delivery) error {
	log := that.logger.With("method", "handleDelivery")

	if delivery.Err != nil {
		if errors.Is(delivery.Err, apperror.ErrConnectionLost) {
			log.Warn("peer connection lost", "error", delivery.Err)
			return delivery.Err
		}

		log.Warn("ignoring message", "error", delivery.Err)
		return nil
	}

	switch msg := delivery.Message.(type) {
	case protocol.Name:
		if err := that.game.SetPlayerName(that.game.RivalSymbol(), msg.Name); err != nil {
			return fmt.Errorf("failed to record rival name: %w", err)
		}
		that.notify()

	case protocol.Move:
		return that.playRemote(msg)

	default:
		log.Warn("ignoring message of unknown kind", "message", delivery.Message)
	}

	return nil
}

func (that *Session) playRemote(move protocol.Move) error {
	log := that.logger.With("method", "playRemote")

	if !that.trustRemoteMoves {
		if err := tictactoe.ValidateRemoteMove(that.game, move.Symbol, move.Index); err != nil {
			log.Error("illegal move from peer", "cell", move.Index, "mark", move.Symbol, "error", err)
			return fmt.Errorf("%w: %w", apperror.ErrIllegalRemoteMove, err)
		}
	}

	if err := tictactoe.ApplyMove(that.game, move.Symbol, move.Index); err != nil {
		log.Warn("remote move not applied", "cell", move.Index, "mark", move.Symbol, "error", err)
		return nil
	}
	that.notify()

	return nil
}

func (that *Session) finish(ctx context.Context) {
	log := that.logger.With("method", "finish")

	log.Info("game finished", "winner", that.game.Winner)

	if !that.game.IWon() || that.ledger == nil {
		return
	}

	if err := that.ledger.RecordWin(ctx, that.name); err != nil {
		log.Error("failed to record win", "name", that.name, "error", err)
	}
}

func (that *Session) notify() {
	that.observer.GameUpdated(that.game.Clone())
}

// sendFailure - a failed write means the peer is gone. Messages that cannot be encoded and
// cancelled sends keep their own error.
func sendFailure(err error) error {
	var decodeErr *protocol.DecodeError

	switch {
	case errors.Is(err, apperror.ErrConnectionLost),
		errors.As(err, &decodeErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", apperror.ErrConnectionLost, err)
	}
}
