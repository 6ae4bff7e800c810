package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"vibermm/internal/alerts"
	"vibermm/internal/assets"
	"vibermm/internal/auth"
	"vibermm/internal/companies"
	"vibermm/internal/config"
	"vibermm/internal/dashboard"
	"vibermm/internal/datasource"
	"vibermm/internal/db"
	"vibermm/internal/devices"
	"vibermm/internal/events"
	"vibermm/internal/hostmetrics"
	"vibermm/internal/logging"
	"vibermm/internal/notify"
	"vibermm/internal/oid"
	"vibermm/internal/patch"
	"vibermm/internal/poller"
	"vibermm/internal/rules"
	"vibermm/internal/store"
	"vibermm/internal/web"

	"go.uber.org/zap"
)

func main() {
	cfg, cfgErr := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "vibermm")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Warn("configuration", zap.Error(cfgErr))
	}

	if cfg.OIDFile != "" {
		if err := oid.Load(cfg.OIDFile); err != nil {
			logger.Fatal("failed to load OID table", zap.String("path", cfg.OIDFile), zap.Error(err))
		}
	}

	// Initialize database
	gdb, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	st := store.New(gdb, logger)

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.NATSURL != "" {
		np, err := events.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to NATS", zap.String("url", cfg.NATSURL), zap.Error(err))
		}
		publisher = np
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := hostmetrics.NewCollector(logger)

	board := dashboard.NewBoard(st, logger)
	board.Load(ctx)
	sources := datasource.New(st, collector, logger)
	sources.Load(ctx)

	svc := web.Services{
		Devices:     devices.New(gdb, collector, publisher, logger),
		Alerts:      alerts.New(gdb, publisher, logger),
		Assets:      assets.New(gdb, st, publisher, logger),
		Companies:   companies.New(gdb, logger),
		Patch:       patch.New(gdb, publisher, logger),
		Rules:       rules.New(gdb, logger),
		Auth:        auth.New(st, logger),
		DataSources: sources,
		Board:       board,
		Notices:     notify.NewCenter(),
	}

	// Start background SNMP poller
	go poller.New(gdb, logger, cfg.PollInterval).Run(ctx)

	app := web.NewApp(svc, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("server running", zap.String("addr", "http://"+cfg.Addr()))
	if err := app.Listen(cfg.Addr()); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}

	board.Flush()
}
