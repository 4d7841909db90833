// Command storefront serves the coffee shop storefront and its back office in
// front of the shop's REST backend.
//
// @title        Storefront API
// @version      1.0
// @description  Coffee shop storefront and back office in front of the shop backend.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kopinusa/storefront/internal/api"
	"github.com/kopinusa/storefront/internal/api/handler"
	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/service"
	"github.com/kopinusa/storefront/internal/core/validation"
	"github.com/kopinusa/storefront/internal/infrastructure/backend"
	"github.com/kopinusa/storefront/internal/infrastructure/config"
	mongodb "github.com/kopinusa/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/kopinusa/storefront/internal/infrastructure/db/redis"
	"github.com/kopinusa/storefront/internal/infrastructure/queue"
	"github.com/kopinusa/storefront/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("storefront stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("disconnect mongodb")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	shop, err := backend.New(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, log)
	if err != nil {
		return err
	}

	sessions := redisdb.NewSessionStore(rdb)
	carts := redisdb.NewCartStore(rdb, 0)
	guard := redisdb.NewSubmitGuard(rdb, 0)
	favorites := mongodb.NewFavoriteRepository(db)

	// The audit queue outlives the server so in-flight admin requests still
	// get recorded; it is drained before MongoDB disconnects.
	activity := queue.NewActivityDispatcher(0, mongodb.NewActivityRepository(db), log)
	queueCtx, stopQueue := context.WithCancel(context.Background())
	activity.Start(queueCtx)
	defer func() {
		stopQueue()
		activity.Wait()
	}()

	authService := service.NewAuthService(shop, sessions, carts, validation.New(), service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.Session.TTL,
	}, log)
	adminService := service.NewAdminService(shop, listing.NewWorkspace(cfg.Workspace.Size, cfg.Workspace.TTL), activity, log)
	authService.OnLogout(adminService.Evict)

	router := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Catalog:   service.NewCatalogService(shop, log),
		Cart:      service.NewCartService(shop, carts, guard, log),
		Favorites: service.NewFavoriteService(favorites, shop),
		Admin:     adminService,
		Cookies: middleware.CookieConfig{
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"backend": shop.Ping,
		},
		Log: log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("backend", cfg.Backend.URL).Msg("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
