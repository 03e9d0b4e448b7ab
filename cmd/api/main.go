package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/supercivilian/supercivilian/internal/adapters/http"
	natsadapter "github.com/supercivilian/supercivilian/internal/adapters/nats"
	"github.com/supercivilian/supercivilian/internal/adapters/postgres"
	"github.com/supercivilian/supercivilian/internal/bootstrap"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/core/usecases"
	"github.com/supercivilian/supercivilian/internal/pkg/config"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
	"github.com/supercivilian/supercivilian/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("supercivilian-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// `api token <subject>` prints a staff token and exits.
	if len(os.Args) > 1 && os.Args[1] == "token" {
		issueToken(cfg)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache; without one every lookup goes upstream.
	cache, closeCache, err := bootstrap.OpenCache(ctx, cfg.Cache)
	if err != nil {
		slog.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "error", err)
		cache = nil
	}
	defer closeCache()

	// Database; only occupancy tracking needs it.
	var occupancy *usecases.OccupancyService
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, occupancy tracking disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		events = pub
		defer pub.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	if db != nil {
		occupancy = usecases.NewOccupancyService(postgres.NewOccupancyRepo(db), events)
	}

	deps := &http.Dependencies{
		Shelters:  bootstrap.ShelterService(cfg, cache),
		Places:    bootstrap.PlacesService(cfg, cache),
		Occupancy: occupancy,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		DocsPath:  http.DefaultDocsPath,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Supercivilian API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowOrigins, ", "),
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "cache", cfg.Cache.Backend)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func issueToken(cfg *config.Config) {
	if len(os.Args) < 3 {
		log.Fatal("usage: api token <subject>")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret is not set")
	}
	tok, err := http.IssueStaffToken([]byte(cfg.Auth.JWTSecret), os.Args[2], 30*24*time.Hour)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok)
}
