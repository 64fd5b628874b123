// Package graphserver exposes a ports.GraphStore to remote clients over
// websocket, using the frames defined in internal/adapters/remote.
package graphserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jade/internal/adapters/remote"
	"jade/internal/observability"
	"jade/internal/ports"
)

// Server serves one store to any number of websocket connections
type Server struct {
	store    ports.GraphStore
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server for store. A nil logger falls back to slog.Default().
func New(store ports.GraphStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Jade runs in the browser on another port of the same host
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// Handler returns the HTTP routes: /ws, /healthz and /metrics
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", s.handleWebSocket)

	return r
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}

	browser := c.Query(remote.BrowserParam)
	logger := s.logger.With("browser", browser, "remote", c.Request.RemoteAddr)

	observability.ConnectionsActive.Inc()
	defer observability.ConnectionsActive.Dec()

	logger.Info("websocket client connected")
	sess := newSession(conn, s.store, logger)
	sess.serve(c.Request.Context())
	logger.Info("websocket client disconnected")
}
