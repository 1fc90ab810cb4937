package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/rocketscienceinc/tictactoe-p2p/transport/rest"
)

const (
	sessionPath = "/session/"
	qrSize      = 320
)

var (
	ErrHostNotOpen   = errors.New("host is not open")
	ErrAlreadyOpened = errors.New("host is already open")
)

type HostConfig struct {
	Bind      string
	Port      string
	PublicURL string
}

// Host is the initiator's side: it publishes a session identifier and waits for exactly one
// responder to connect.
type Host struct {
	logger *slog.Logger
	conf   HostConfig

	upgrader websocket.Upgrader
	srv      *http.Server
	listener net.Listener

	sessionID string
	accepted  chan *Conn
	serveErr  chan error

	mu     sync.Mutex
	joined bool
}

func NewHost(logger *slog.Logger, conf HostConfig) *Host {
	return &Host{
		logger: logger.With("component", "host"),
		conf:   conf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		accepted: make(chan *Conn, 1),
		serveErr: make(chan error, 1),
	}
}

// Open - binds the listener and returns the identifier a responder has to dial.
func (that *Host) Open(_ context.Context) (string, error) {
	log := that.logger.With("method", "Open")

	if that.listener != nil {
		return "", ErrAlreadyOpened
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(that.conf.Bind, that.conf.Port))
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	that.listener = listener
	that.sessionID = GenerateSessionID()
	that.srv = &http.Server{
		Handler:           that.router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		if serveErr := that.srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error("host server error", "error", serveErr)
			that.serveErr <- serveErr
		}
	}()

	log.Info("host opened", "addr", listener.Addr().String(), "session", that.sessionID)

	return that.sessionID, nil
}

func (that *Host) SessionID() string {
	return that.sessionID
}

func (that *Host) Addr() string {
	if that.listener == nil {
		return ""
	}
	return that.listener.Addr().String()
}

// JoinLink - the shareable link a responder passes to Dial.
func (that *Host) JoinLink() string {
	base := strings.TrimSuffix(that.conf.PublicURL, "/")
	if base == "" {
		base = "http://" + that.advertisedAddr()
	}

	return base + sessionPath + that.sessionID
}

// QRCode - the join link as a QR code drawn with unicode blocks.
func (that *Host) QRCode() (string, error) {
	code, err := qrcode.New(that.JoinLink(), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to generate qr code: %w", err)
	}

	return code.ToSmallString(false), nil
}

// Accept - waits for the responder's connection.
func (that *Host) Accept(ctx context.Context) (*Conn, error) {
	if that.listener == nil {
		return nil, ErrHostNotOpen
	}

	select {
	case conn := <-that.accepted:
		return conn, nil
	case err := <-that.serveErr:
		return nil, fmt.Errorf("host stopped: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for peer: %w", ctx.Err())
	}
}

// Close - stops accepting HTTP requests. An accepted Conn stays open.
func (that *Host) Close(ctx context.Context) error {
	if that.srv == nil {
		return nil
	}

	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown host: %w", err)
	}

	return nil
}

func (that *Host) router() *httprouter.Router {
	mux := httprouter.New()

	mux.HandlerFunc(http.MethodGet, "/ping", rest.NewPingHandler().PingHandler)
	mux.GET(sessionPath+":id", that.handleSession)
	mux.GET(sessionPath+":id/ws", that.handleWebsocket)
	mux.GET(sessionPath+":id/qr", that.handleQRCode)

	return mux
}

func (that *Host) handleSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") != that.sessionID {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "tictactoe session %s\njoin with: tictactoe join %s\n", that.sessionID, that.JoinLink())
}

func (that *Host) handleWebsocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	log := that.logger.With("method", "handleWebsocket")

	if ps.ByName("id") != that.sessionID {
		http.NotFound(w, r)
		return
	}

	that.mu.Lock()
	if that.joined {
		that.mu.Unlock()
		log.Warn("rejected extra participant", "remote", r.RemoteAddr)
		http.Error(w, "session already has two players", http.StatusConflict)
		return
	}
	that.joined = true
	that.mu.Unlock()

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)

		that.mu.Lock()
		that.joined = false
		that.mu.Unlock()

		return
	}

	log.Info("peer connected", "remote", r.RemoteAddr)

	that.accepted <- newConn(that.logger, ws)
}

func (that *Host) handleQRCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") != that.sessionID {
		http.NotFound(w, r)
		return
	}

	png, err := qrcode.Encode(that.JoinLink(), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// advertisedAddr - the listener address with an unspecified bind replaced by a reachable IP.
func (that *Host) advertisedAddr() string {
	host, port, err := net.SplitHostPort(that.Addr())
	if err != nil {
		return that.Addr()
	}

	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = outboundIP()
	}

	return net.JoinHostPort(host, port)
}

func outboundIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}

	return "localhost"
}
