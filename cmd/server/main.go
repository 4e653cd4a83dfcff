// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	adminhandler "github.com/keshavpotewar/SkillSwap/internal/admin/handler"
	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/internal/message"
	messagehandler "github.com/keshavpotewar/SkillSwap/internal/message/handler"
	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/notify/redisdispatch"
	"github.com/keshavpotewar/SkillSwap/internal/notify/ws"
	"github.com/keshavpotewar/SkillSwap/internal/platform/config"
	"github.com/keshavpotewar/SkillSwap/internal/platform/httpserver"
	"github.com/keshavpotewar/SkillSwap/internal/platform/logger"
	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
	"github.com/keshavpotewar/SkillSwap/internal/platform/postgres"
	platformredis "github.com/keshavpotewar/SkillSwap/internal/platform/redis"
	"github.com/keshavpotewar/SkillSwap/internal/rating"
	ratinghandler "github.com/keshavpotewar/SkillSwap/internal/rating/handler"
	"github.com/keshavpotewar/SkillSwap/internal/swap"
	swaphandler "github.com/keshavpotewar/SkillSwap/internal/swap/handler"
	httptransport "github.com/keshavpotewar/SkillSwap/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		users    identity.Store
		swaps    swap.Store
		messages message.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		users = identity.NewPostgres(db)
		swaps = swap.NewPostgres(db)
		messages = message.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		users = identity.NewInMemoryStore()
		swaps = swap.NewInMemoryStore()
		messages = message.NewInMemoryStore()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	registry := notify.NewRegistry()
	local := notify.NewLocalDispatcher(registry, log, m)

	var dispatcher notify.Dispatcher = local
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	if redisClient != nil {
		rd := redisdispatch.New(redisClient.Client, local, log)
		dispatcher = rd
		g.Go(func() error { return rd.Run(gctx) })
		log.Info("redis event fan-out enabled")
	}

	jwtService := identity.NewJWTService(cfg.JWTSigningKey)

	swapService := swap.NewService(swaps, users, dispatcher, log, m)
	messageService := message.NewService(messages, users, dispatcher, log, m, cfg.ConversationMax)
	ratingService := rating.NewService(users, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		JWTValidator: jwtService,
		Swaps:        swaphandler.New(swapService, log),
		Messages:     messagehandler.New(messageService, log),
		Ratings:      ratinghandler.New(ratingService, log),
		Admin:        adminhandler.New(dispatcher, log),
		WS:           ws.NewHandler(registry, log, m),
		Health: func() map[string]string {
			health := map[string]string{"status": "ok"}
			if redisClient != nil {
				if err := redisClient.Health(ctx); err != nil {
					health["redis"] = "unreachable"
				} else {
					health["redis"] = "ok"
				}
			}
			return health
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting skillswap server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
