// Package main provides the world server binary: the WebSocket gateway,
// the presence layer, and the status heartbeat.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ravenfell/worldserver/internal/config"
	"github.com/ravenfell/worldserver/internal/game/monster"
	"github.com/ravenfell/worldserver/internal/game/presence"
	"github.com/ravenfell/worldserver/internal/gateway"
	"github.com/ravenfell/worldserver/internal/observability"
	"github.com/ravenfell/worldserver/internal/server"
	"github.com/ravenfell/worldserver/internal/status"
	"github.com/ravenfell/worldserver/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	monstersDir := flag.String("monsters-dir", "", "override for the monster YAML templates directory")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *monstersDir != "" {
		cfg.Content.MonstersDir = *monstersDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting world server",
		zap.Int("server_id", cfg.Server.ID),
		zap.String("server_name", cfg.Server.Name),
		zap.String("gateway_addr", cfg.Gateway.Addr()),
	)

	// Load static monster content.
	contentStart := time.Now()
	templates, err := monster.LoadTemplates(cfg.Content.MonstersDir)
	if err != nil {
		logger.Fatal("loading monster templates", zap.Error(err))
	}
	monsters := monster.NewProvider(templates)
	logger.Info("monster templates loaded",
		zap.Int("count", len(templates)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect to PostgreSQL for account and character persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	accountRepo := postgres.NewAccountRepository(pool.DB())
	charRepo := postgres.NewCharacterRepository(pool.DB())
	statusRepo := postgres.NewServerStatusRepository(pool.DB())

	registry := presence.NewRegistry()
	rooms := presence.NewRooms()

	router := gateway.NewRouter(registry, rooms, accountRepo, charRepo, monsters, statusRepo, logger)
	gw := gateway.NewGateway(cfg.Gateway, router, logger)

	heartbeat := status.NewHeartbeat(cfg.Server, cfg.Heartbeat.Interval, registry, statusRepo, logger)

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("gateway", gw)

	lifecycle.Add("heartbeat", &server.FuncService{
		StartFn: func() error {
			heartbeat.Start()
			return nil
		},
		StopFn: heartbeat.Stop,
	})

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{Addr: cfg.Metrics.Addr(), Handler: mux}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Addr()))
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			},
			StopFn: func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(shutdownCtx)
			},
		})
	}

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	logger.Info("world server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
