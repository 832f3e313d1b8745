package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"StaffHub/config"
	"StaffHub/internal/cache"
	"StaffHub/internal/queue"
	"StaffHub/internal/service"
	"StaffHub/pkg/logger"
	pkgotel "StaffHub/pkg/otel"
	"StaffHub/storage"
)

const consumerRestartDelay = 5 * time.Second

func main() {
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if config.Cfg.OTelEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:  config.Cfg.ServiceName + "-worker",
			Environment:  config.Cfg.Environment,
			OTLPEndpoint: config.Cfg.OTelEndpoint,
			SampleRatio:  config.Cfg.OTelSampler,
		})
		if err != nil {
			logger.Logger.Warn("OpenTelemetry disabled", zap.Error(err))
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	dispatcher := queue.NewDispatcher(service.Notification(), cache.MessageDeduper{})

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// Consume returns when the channel drops; restart until shutdown.
	for ctx.Err() == nil {
		err := queue.StartEventConsumer(ctx, dispatcher)
		if ctx.Err() != nil {
			break
		}
		logger.Logger.Error("Event consumer stopped, restarting", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(consumerRestartDelay):
		}
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
