package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ravenfell/worldserver/internal/config"
	"github.com/ravenfell/worldserver/internal/observability"
)

// Gateway accepts WebSocket client connections and runs one read loop per
// connection, feeding inbound messages to the Router. Requests from a single
// connection are processed sequentially; connections are concurrent with
// each other.
type Gateway struct {
	cfg      config.GatewayConfig
	router   *Router
	logger   *zap.Logger
	upgrader websocket.Upgrader
	server   *http.Server
}

// NewGateway creates a Gateway serving the given router.
//
// Precondition: router and logger must be non-nil.
func NewGateway(cfg config.GatewayConfig, router *Router, logger *zap.Logger) *Gateway {
	g := &Gateway{
		cfg:    cfg,
		router: router,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	g.server = &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
	}
	return g
}

// Start begins serving client connections. It blocks until Stop is called
// or the listener fails.
func (g *Gateway) Start() error {
	g.logger.Info("gateway listening", zap.String("addr", g.cfg.Addr()))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down gracefully.
func (g *Gateway) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.Warn("gateway shutdown", zap.Error(err))
	}
}

// handleWS upgrades one HTTP request to a WebSocket session and runs its
// lifecycle: register, read loop, cleanup.
func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	logger := g.logger.With(zap.String("conn_id", connID))

	if _, err := g.router.registry.Register(connID); err != nil {
		logger.Error("registering connection", zap.Error(err))
		_ = conn.Close()
		return
	}

	client := NewClient(connID, conn, g.cfg.SendBuffer)
	g.router.Attach(connID, client)

	observability.ConnectionsTotal.Inc()
	observability.ConnectionsCurrent.Inc()
	logger.Info("connection established",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("live_connections", g.router.registry.Count()),
	)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		if err := client.WriteLoop(g.cfg.WriteTimeout); err != nil {
			logger.Debug("write loop ended", zap.Error(err))
		}
	}()

	g.readLoop(r.Context(), connID, conn, logger)

	// Disconnect before closing the client so departure broadcasts to other
	// rooms still flow; this connection's own queue is simply dropped.
	g.router.Disconnect(context.Background(), connID)
	client.Close()
	_ = conn.Close()
	<-writeDone
	observability.ConnectionsCurrent.Dec()
}

// readLoop dispatches inbound messages until the connection closes.
func (g *Gateway) readLoop(ctx context.Context, connID string, conn *websocket.Conn, logger *zap.Logger) {
	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read loop ended", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		g.router.Handle(ctx, connID, raw)
	}
}
