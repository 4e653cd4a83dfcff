package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
)

// Handler upgrades authenticated requests to websocket channels and owns
// their registry lifecycle: register on connect, unregister when either pump
// exits.
type Handler struct {
	registry *notify.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

func NewHandler(registry *notify.Registry, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
		metrics:  m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client connects cross-origin in development; auth
			// is the bearer token, not the Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws. RequireAuth has already put the caller id in
// the context.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return
	}

	ch := newChannel(conn)
	h.registry.Register(userID, ch)
	h.metrics.LiveConnections.Inc()
	h.logger.InfoContext(ctx, "websocket channel registered", "user_id", userID)

	go ch.writePump()
	// The read pump blocks until the peer disconnects; run it on the request
	// goroutine so unregistration happens exactly once, here.
	ch.readPump()

	h.registry.Unregister(ch)
	h.metrics.LiveConnections.Dec()
	h.logger.InfoContext(ctx, "websocket channel unregistered", "user_id", userID)
}
