package main

import (
	"context"
	"time"

	"go.uber.org/zap"

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.Migrate(ctx); err != nil {
		logger.Logger.Fatal("Migration failed", zap.Error(err))
	}
}
