package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/metrics"
	"StaffHub/storage/database"
)

var (
	notificationService *NotificationService
	notificationOnce    sync.Once
)

func Notification() *NotificationService {
	notificationOnce.Do(func() {
		notificationService = NewNotificationService(database.DB())
	})
	return notificationService
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Send creates a notification for the named users, or for every active user when no
// names are given. Unknown usernames are skipped.
func (s *NotificationService) Send(ctx context.Context, actor *model.User, req dto.SendNotificationRequest) (*dto.SendNotificationResponse, error) {
	if actor.EffectiveRole() == model.RoleEmployee {
		return nil, pkgerrors.Forbidden
	}

	importance := model.NotificationImportance(req.Importance)
	if importance == "" {
		importance = model.NotificationImportanceNormal
	}
	if !importance.Valid() {
		return nil, pkgerrors.NotificationImportanceInvalid
	}

	var (
		n          model.Notification
		recipients int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.User{}).Where("is_active = ?", true)
		if len(req.Usernames) > 0 {
			q = q.Where("username IN ?", req.Usernames)
		}
		var userIDs []int64
		if err := q.Order("id").Pluck("id", &userIDs).Error; err != nil {
			return fmt.Errorf("failed to resolve recipients: %w", err)
		}

		n = model.Notification{Title: req.Title, Message: req.Message, Importance: importance}
		if err := tx.Create(&n).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		if err := fanOut(tx, n.ID, userIDs); err != nil {
			return err
		}
		recipients = len(userIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordNotificationFanout(ctx, recipients)
	logger.Logger.Info("Notification sent",
		zap.Int64("notification_id", n.ID),
		zap.Int64("sender_id", actor.ID),
		zap.Int("recipients", recipients),
	)

	return &dto.SendNotificationResponse{
		Notification: notificationData(&n),
		Recipients:   recipients,
	}, nil
}

func fanOut(tx *gorm.DB, notificationID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]model.UserNotification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, model.UserNotification{UserID: id, NotificationID: notificationID})
	}
	if err := tx.CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("failed to create user notifications: %w", err)
	}
	return nil
}

// NotifyUsers creates a normal notification for the given active users. It is the
// worker's entry point and returns how many users were notified.
func (s *NotificationService) NotifyUsers(ctx context.Context, userIDs []int64, title, message string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var notified int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		err := tx.Model(&model.User{}).
			Where("id IN ? AND is_active = ?", userIDs, true).
			Order("id").
			Pluck("id", &ids).Error
		if err != nil {
			return fmt.Errorf("failed to resolve recipients: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		n := model.Notification{Title: title, Message: message, Importance: model.NotificationImportanceNormal}
		if err := tx.Create(&n).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		notified = len(ids)
		return fanOut(tx, n.ID, ids)
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordNotificationFanout(ctx, notified)
	return notified, nil
}

// UserIDsWithRole lists active users whose effective role is role. Roles are derived
// from several columns, so the filter runs in memory.
func (s *NotificationService) UserIDsWithRole(ctx context.Context, role model.Role) ([]int64, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Select("id", "role", "is_staff", "is_superuser").
		Where("is_active = ?", true).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var ids []int64
	for i := range users {
		if users[i].EffectiveRole() == role {
			ids = append(ids, users[i].ID)
		}
	}
	return ids, nil
}

// List returns every notification, newest first. Employees only see their own inbox.
func (s *NotificationService) List(ctx context.Context, actor *model.User, q dto.PageQuery) (*dto.Page[dto.NotificationData], error) {
	if actor.EffectiveRole() == model.RoleEmployee {
		return nil, pkgerrors.Forbidden
	}
	q.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Notification{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var rows []model.Notification
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Scopes(paginate(q)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	items := make([]dto.NotificationData, 0, len(rows))
	for i := range rows {
		items = append(items, notificationData(&rows[i]))
	}
	return &dto.Page[dto.NotificationData]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// ListMine returns the actor's notifications, newest notification first.
func (s *NotificationService) ListMine(ctx context.Context, actor *model.User, q dto.PageQuery) (*dto.Page[dto.UserNotificationData], error) {
	q.Normalize()

	base := s.db.WithContext(ctx).Model(&model.UserNotification{}).Where("user_id = ?", actor.ID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count user notifications: %w", err)
	}

	var rows []model.UserNotification
	err := base.Session(&gorm.Session{}).
		Preload("Notification").
		Order("notification_id DESC").
		Scopes(paginate(q)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user notifications: %w", err)
	}

	items := make([]dto.UserNotificationData, 0, len(rows))
	for i := range rows {
		items = append(items, userNotificationData(&rows[i]))
	}
	return &dto.Page[dto.UserNotificationData]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// MarkRead flags one of the actor's notifications as read. Another user's row is
// reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, actor *model.User, id int64) (*dto.UserNotificationData, error) {
	var un model.UserNotification
	err := s.db.WithContext(ctx).
		Preload("Notification").
		Where("user_id = ?", actor.ID).
		First(&un, id).Error
	if err != nil {
		return nil, notFound(err, pkgerrors.NotificationNotFound, "user notification")
	}

	if !un.IsRead {
		err = s.db.WithContext(ctx).Model(&un).Update("is_read", true).Error
		if err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		un.IsRead = true
	}

	data := userNotificationData(&un)
	return &data, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor *model.User) (*dto.UnreadCount, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Count(&n).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &dto.UnreadCount{Unread: n}, nil
}

func notificationData(n *model.Notification) dto.NotificationData {
	return dto.NotificationData{
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		Importance: string(n.Importance),
		CreatedAt:  n.CreatedAt,
	}
}

func userNotificationData(un *model.UserNotification) dto.UserNotificationData {
	data := dto.UserNotificationData{ID: un.ID, IsRead: un.IsRead}
	if un.Notification != nil {
		data.Notification = notificationData(un.Notification)
	}
	return data
}
