package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StaffHub/internal/model"
	"StaffHub/pkg/logger"
)

// Models lists every table owned by the portal, in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Section{},
		&model.Form{},
		&model.UserSectionPermission{},
		&model.Notification{},
		&model.UserNotification{},
		&model.Complaint{},
		&model.Task{},
		&model.TaskPhase{},
		&model.TaskRecipient{},
		&model.TaskComment{},
		&model.Survey{},
		&model.SurveyQuestion{},
		&model.SurveyOption{},
		&model.SurveySubmission{},
		&model.SurveyAnswer{},
		&model.EmployeePointLog{},
		&model.HonorBoardSetting{},
	}
}

// Migrate creates or updates the schema on the shared connection and initializes
// the honor board settings row.
func Migrate(ctx context.Context) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration")
	if err := AutoMigrate(db); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}
	if err := EnsureHonorBoardSetting(ctx, db); err != nil {
		return err
	}
	logger.Logger.Info("Database migration completed")
	return nil
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

// EnsureHonorBoardSetting inserts the singleton settings row with both windows enabled,
// leaving an existing row untouched.
func EnsureHonorBoardSetting(ctx context.Context, gdb *gorm.DB) error {
	setting := model.HonorBoardSetting{
		BaseModel:    model.BaseModel{ID: model.HonorBoardSettingID},
		EnabledMonth: true,
		EnabledYear:  true,
	}
	err := gdb.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to initialize honor board settings: %w", err)
	}
	return nil
}
