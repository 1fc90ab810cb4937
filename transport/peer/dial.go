package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
)

var ErrInvalidJoinLink = errors.New("invalid join link")

// Dial - the responder's side: connects to the host behind a join link.
func Dial(ctx context.Context, logger *slog.Logger, link string) (*Conn, error) {
	log := logger.With("component", "dialer", "method", "Dial")

	wsURL, sessionID, err := ParseJoinLink(link)
	if err != nil {
		return nil, err
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: host answered %s: %w", apperror.ErrConnectionLost, resp.Status, err)
		}
		return nil, fmt.Errorf("%w: failed to dial %s: %w", apperror.ErrConnectionLost, wsURL, err)
	}

	log.Info("connected to host", "session", sessionID)

	return newConn(logger, ws), nil
}

// ParseJoinLink - turns a shared link into the websocket endpoint of the host.
// Accepted forms: http(s)|ws(s)://host/session/<id>[/ws] and http(s)://host/?join=<id>.
func ParseJoinLink(link string) (string, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidJoinLink, err)
	}

	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidJoinLink, parsed.Scheme)
	}

	if parsed.Host == "" {
		return "", "", fmt.Errorf("%w: missing host", ErrInvalidJoinLink)
	}

	sessionID := parsed.Query().Get("join")
	if sessionID == "" {
		parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(parts) < 2 || len(parts) > 3 || parts[0] != strings.Trim(sessionPath, "/") || (len(parts) == 3 && parts[2] != "ws") {
			return "", "", fmt.Errorf("%w: unexpected path %q", ErrInvalidJoinLink, parsed.Path)
		}
		sessionID = parts[1]
	}

	if sessionID == "" {
		return "", "", fmt.Errorf("%w: missing session id", ErrInvalidJoinLink)
	}

	parsed.Path = sessionPath + sessionID + "/ws"
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String(), sessionID, nil
}
