// Package main is the entry point for the hullbreach simulation server.
// It only handles dependency injection and server initialization.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/infra/cache"
	"github.com/MRamiBalles/hullbreach/internal/infra/storage"
	"github.com/MRamiBalles/hullbreach/internal/network"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
	"github.com/MRamiBalles/hullbreach/internal/platform/optimization"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		logger.NewLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	appLogger.Info("initializing hullbreach server",
		"environment", cfg.Environment,
		"session", cfg.SessionID,
		"profile", cfg.Profile,
	)

	sim, err := config.LoadSimulation(cfg.SimConfigPath)
	if err != nil {
		appLogger.Error("failed to load simulation config", "path", cfg.SimConfigPath, "error", err)
		os.Exit(1)
	}
	tuning := optimization.ForProfile(cfg.Profile)
	network.ConfigureLocale(cfg.LocaleDir, cfg.Language)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, eventRepo, snapRepo, err := openStorage(ctx, cfg, tuning, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	var persister events.EventPersister
	if eventRepo != nil {
		persister = storage.NewJournal(eventRepo, cfg.SessionID, appLogger)
	}
	eventLog := events.NewEventLog(persister, tuning.EventChannelBuffer)

	appLogger.Info("bootstrapping engine", "ships", cfg.ShipIDs, "tick_rate", cfg.TickRate, "time_scale", cfg.TimeScale)
	eng := engine.NewEngine(eventLog, appLogger)
	for _, id := range cfg.ShipIDs {
		if err := eng.RegisterShip(id, id, sim); err != nil {
			appLogger.Error("failed to register ship", "ship", id, "error", err)
			os.Exit(1)
		}
	}
	ticker := eng.Start(ctx, cfg.TickRate, cfg.TimeScale)

	var shipCache *cache.ShipCache
	if cfg.RedisEnabled {
		client, err := cache.Connect(ctx, cfg.RedisURL, tuning.RedisPoolSize)
		if err != nil {
			appLogger.Warn("redis unavailable, snapshot mirror disabled", "error", err)
		} else {
			defer client.Close()
			shipCache = cache.NewShipCache(client)
			appLogger.Info("redis snapshot mirror enabled")
		}
	}
	go snapshotLoop(ctx, cfg, eng, snapRepo, shipCache, appLogger)
	go tuningLoop(ctx, tuning, appLogger)

	hub := network.NewHub(eng, tuning, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog, cfg.SnapshotInterval)

	limiter := network.NewIPRateLimiter(tuning.CommandsPerSecond, tuning.CommandBurst, appLogger)
	go limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: network.NewRouter(network.RouterConfig{
			Sim:         eng,
			EventLog:    eventLog,
			Hub:         hub,
			Limiter:     limiter,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      appLogger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP API and WebSocket server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("http shutdown incomplete", "error", err)
	}
	ticker.Stop()
	cancel()

	if snapRepo != nil {
		if err := storage.SaveShips(shutdownCtx, snapRepo, cfg.SessionID, eng.Snapshots()); err != nil {
			appLogger.Warn("final snapshot failed", "error", err)
		}
	}
	eventLog.Close()
	appLogger.Info("server stopped", "events", eventLog.Len())
}

// openStorage connects the configured driver. With DB_DRIVER=none all
// three return values are nil and the event log stays in memory.
func openStorage(ctx context.Context, cfg *config.Server, tuning *optimization.Config, log *logger.Logger) (*sql.DB, storage.EventRepository, storage.SnapshotRepository, error) {
	switch cfg.DBDriver {
	case "sqlite":
		log.Info("initializing SQLite database", "path", cfg.SQLitePath)
		db, err := storage.InitSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, storage.NewSQLiteEventRepository(db), storage.NewSQLiteSnapshotRepository(db), nil
	case "postgres":
		log.Info("initializing PostgreSQL database")
		db, err := storage.InitPostgres(ctx, cfg.PostgresDSN, tuning.DBMaxOpenConns, tuning.DBMaxIdleConns)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, storage.NewPostgresEventRepository(db), storage.NewPostgresSnapshotRepository(db), nil
	default:
		log.Warn("no database configured, events are kept in memory only")
		return nil, nil, nil, nil
	}
}

// snapshotLoop upserts the ship read model and mirrors it to Redis.
func snapshotLoop(ctx context.Context, cfg *config.Server, eng *engine.Engine, repo storage.SnapshotRepository, shipCache *cache.ShipCache, log *logger.Logger) {
	if repo == nil && shipCache == nil {
		return
	}
	t := time.NewTicker(cfg.SnapshotInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snaps := eng.Snapshots()
			if repo != nil {
				if err := storage.SaveShips(ctx, repo, cfg.SessionID, snaps); err != nil {
					log.Warn("snapshot upsert failed", "error", err)
				}
			}
			if shipCache != nil {
				if err := shipCache.Mirror(ctx, cfg.SessionID, snaps); err != nil {
					log.Warn("redis mirror failed", "error", err)
				}
			}
		}
	}
}

// tuningLoop logs profile advice derived from the live metrics.
func tuningLoop(ctx context.Context, tuning *optimization.Config, log *logger.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rec := optimization.Analyze(metrics.Get().Snapshot())
			if len(rec.Notes) == 0 {
				continue
			}
			advised := optimization.ApplyRecommendations(copyConfig(tuning), rec)
			log.Warn("tuning advice",
				"notes", rec.Notes,
				"event_buffer", advised.EventChannelBuffer,
				"client_send_buffer", advised.ClientSendBuffer,
				"db_max_open", advised.DBMaxOpenConns,
				"commands_per_second", advised.CommandsPerSecond,
			)
		}
	}
}

func copyConfig(c *optimization.Config) *optimization.Config {
	cp := *c
	return &cp
}
