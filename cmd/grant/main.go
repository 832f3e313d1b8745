package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"StaffHub/internal/service"
	"StaffHub/pkg/logger"
	"StaffHub/storage/database"
)

func main() {
	logger.Init()
	defer logger.Sync()

	if err := database.Init(); err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = database.Close(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_, err := service.Directory().GrantEmployeeSections(ctx)
	switch {
	case errors.Is(err, service.ErrNoSections), errors.Is(err, service.ErrNoEmployees):
		logger.Logger.Warn("Nothing to grant", zap.Error(err))
	case err != nil:
		logger.Logger.Fatal("Granting section permissions failed", zap.Error(err))
	}
}
