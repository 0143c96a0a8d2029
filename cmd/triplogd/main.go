// Package main is the entry point for the triplog daemon. Its sole
// responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for database/sql (goose)
	"github.com/pressly/goose/v3"

	"github.com/mkarlsen/triplog/internal/auth"
	"github.com/mkarlsen/triplog/internal/blob"
	"github.com/mkarlsen/triplog/internal/config"
	"github.com/mkarlsen/triplog/internal/handler"
	"github.com/mkarlsen/triplog/internal/middleware"
	"github.com/mkarlsen/triplog/internal/route"
	"github.com/mkarlsen/triplog/internal/session"
	"github.com/mkarlsen/triplog/internal/store"
	"github.com/mkarlsen/triplog/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.Store.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// Apply pending migrations before accepting traffic. goose needs a
	// database/sql handle, not the pgx pool.
	if err := migrate(cfg.Store.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Collaborators ----------------------------------------------------
	var routeCache route.Cache
	if cfg.Redis.Addr != "" {
		client, err := route.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		routeCache = route.NewRedisCache(client, cfg.Redis.CacheTTL)
		slog.Info("route cache enabled", "addr", cfg.Redis.Addr)
	}

	routes := route.NewClient(cfg.Maps.DirectionsBaseURL, cfg.Maps.APIKey, nil, routeCache)
	places := route.NewPlacesClient(cfg.Maps.PlacesBaseURL, cfg.Maps.APIKey, nil)

	var photos blob.Store
	if cfg.Blob.BaseURL != "" {
		photos = blob.NewHTTPStore(cfg.Blob.BaseURL, nil)
	}

	// --- Session ----------------------------------------------------------
	// One controller per daemon: the process hosts a single user session.
	// Auth transitions drive the controller's subscription lifecycle.
	controller := session.New(store.NewPostgres(pool), logger)
	defer controller.Close()

	authn := auth.NewManager([]byte(cfg.Auth.JWTSecret))
	authn.Watch(controller.OnAuthChange)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.Server.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(64 << 20))

	srv := handler.NewServer(controller, authn, photos, routes, places)
	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout is left generous because /state/stream is long-lived.
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending goose migrations from the embedded FS.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
