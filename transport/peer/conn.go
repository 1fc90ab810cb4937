package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	closeWait      = time.Second
	maxMessageSize = 1024
	deliveryBuffer = 16
)

var ErrClosed = errors.New("connection is closed")

// Conn is one end of the point-to-point link. Deliveries arrive in send order; after a
// transport failure a single ErrConnectionLost delivery is emitted and the channel closes.
type Conn struct {
	logger *slog.Logger
	ws     *websocket.Conn

	writeMu    sync.Mutex
	deliveries chan protocol.Delivery
	done       chan struct{}
	closeOnce  sync.Once
}

func newConn(logger *slog.Logger, ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxMessageSize)

	conn := &Conn{
		logger:     logger.With("component", "peer", "remote", ws.RemoteAddr().String()),
		ws:         ws,
		deliveries: make(chan protocol.Delivery, deliveryBuffer),
		done:       make(chan struct{}),
	}

	go conn.readLoop()

	return conn
}

func (that *Conn) Deliveries() <-chan protocol.Delivery {
	return that.deliveries
}

// Send - encodes msg and writes it as a single text frame. Cancelling ctx interrupts a
// blocked write; the connection is unusable afterwards.
func (that *Conn) Send(ctx context.Context, msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	select {
	case <-that.done:
		return ErrClosed
	default:
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("send cancelled: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = that.ws.NetConn().SetWriteDeadline(time.Now())
	})
	defer stop()

	deadline := time.Now().Add(writeWait)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err = that.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrConnectionLost, err)
	}

	if err = that.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("send cancelled: %w", ctxErr)
		}

		return fmt.Errorf("%w: %w", apperror.ErrConnectionLost, err)
	}

	that.logger.Debug("message sent", "kind", msg.Kind())

	return nil
}

// Close - sends a close frame and releases the socket. Safe to call more than once.
func (that *Conn) Close() error {
	var err error

	that.closeOnce.Do(func() {
		close(that.done)

		that.writeMu.Lock()
		_ = that.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWait),
		)
		that.writeMu.Unlock()

		err = that.ws.Close()
	})

	return err
}

func (that *Conn) readLoop() {
	log := that.logger.With("method", "readLoop")

	defer close(that.deliveries)

	for {
		messageType, data, err := that.ws.ReadMessage()
		if err != nil {
			select {
			case <-that.done:
				return
			default:
			}

			log.Debug("read failed", "error", err)
			that.deliver(protocol.Delivery{Err: fmt.Errorf("%w: %w", apperror.ErrConnectionLost, err)})

			return
		}

		if messageType != websocket.TextMessage {
			that.deliver(protocol.Delivery{Err: &protocol.DecodeError{Reason: "binary frame", Err: protocol.ErrMalformed}})
			continue
		}

		msg, err := protocol.Decode(data)
		if !that.deliver(protocol.Delivery{Message: msg, Err: err}) {
			return
		}
	}
}

func (that *Conn) deliver(delivery protocol.Delivery) bool {
	select {
	case that.deliveries <- delivery:
		return true
	case <-that.done:
		return false
	}
}
