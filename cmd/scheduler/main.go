package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StaffHub/config"
	"StaffHub/internal/cache"
	"StaffHub/internal/schedule"
	"StaffHub/internal/service"
	"StaffHub/pkg/logger"
	"StaffHub/storage"
)

func main() {
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.Duration("reconcile_interval", config.Cfg.ReconcileInterval),
	)

	schedule.NewPointsReconciler(service.Points(), cache.Locker{}, config.Cfg.ReconcileInterval).Run(ctx)

	logger.Logger.Info("Scheduler stopped")
}
