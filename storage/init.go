package storage

import (
	"StaffHub/storage/database"
	"StaffHub/storage/mq"
	"StaffHub/storage/redis"
)

// Init opens database, redis and rabbitmq in that order.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
