package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storelaunch/internal/cache"
	"storelaunch/internal/config"
	"storelaunch/internal/http/handlers"
	applog "storelaunch/internal/log"
	"storelaunch/internal/repos"
	"storelaunch/internal/services"
	"storelaunch/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("[log] init: %v", err)
	}
	defer applog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.TraceExporter)
	if err != nil {
		applog.Fatal("telemetry.init", err)
	}

	// Optional session cache; a nil interface keeps lookups on the database.
	var sessions services.SessionCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("cache.redis.unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer rdb.Close()
			sessions = cache.NewSessions(rdb)
			logger.Info("cache.redis.connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		applog.Fatal("db.open", err)
	}
	defer db.Close()

	deps := handlers.NewDeps(db, cfg, sessions)
	app := handlers.NewApp(cfg, deps)

	go func() {
		<-ctx.Done()
		logger.Info("server.shutdown")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server.shutdown", zap.Error(err))
		}
	}()

	logger.Info("server.start", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Fatal("server.listen", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("telemetry.shutdown", zap.Error(err))
	}
}
