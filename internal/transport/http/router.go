// Package httptransport assembles the HTTP surface: API routes, the
// websocket endpoint, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "github.com/keshavpotewar/SkillSwap/internal/admin/handler"
	messagehandler "github.com/keshavpotewar/SkillSwap/internal/message/handler"
	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
	ratinghandler "github.com/keshavpotewar/SkillSwap/internal/rating/handler"
	swaphandler "github.com/keshavpotewar/SkillSwap/internal/swap/handler"
	"github.com/keshavpotewar/SkillSwap/internal/transport/http/shared"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger       *slog.Logger
	JWTValidator middleware.JWTValidator
	Swaps        *swaphandler.Handler
	Messages     *messagehandler.Handler
	Ratings      *ratinghandler.Handler
	Admin        *adminhandler.Handler
	WS           http.Handler
	Health       func() map[string]string
}

// NewRouter wires all endpoints. Authenticated API routes live under /api,
// the websocket endpoint under /ws, and /healthz and /metrics stay open.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, d.Health())
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(d.JWTValidator, d.Logger))
		d.Swaps.Register(api)
		d.Messages.Register(api)
		d.Ratings.Register(api)

		api.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(d.Logger))
			d.Admin.Register(admin)
		})
	})

	r.Route("/ws", func(ws chi.Router) {
		ws.Use(middleware.RequireAuth(d.JWTValidator, d.Logger))
		ws.Handle("/", d.WS)
	})

	return r
}
