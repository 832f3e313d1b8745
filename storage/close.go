package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"StaffHub/pkg/logger"
	"StaffHub/storage/database"
	"StaffHub/storage/mq"
	"StaffHub/storage/redis"
)

// Close shuts down MQ first so no new events arrive, then Redis, then the database.
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	} else {
		logger.Logger.Info("Message queue closed")
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	} else {
		logger.Logger.Info("Redis connection closed")
	}

	if err := database.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close database connection", zap.Error(err))
	} else {
		logger.Logger.Info("Database connection closed")
	}

	logger.Logger.Info("All storage connections closed")
}
