package dto

import "time"

type SendNotificationRequest struct {
	Title      string   `json:"title" validate:"required,max=255"`
	Message    string   `json:"message" validate:"required"`
	Importance string   `json:"importance" validate:"omitempty,oneof=normal important"`
	Usernames  []string `json:"usernames"`
}

type NotificationData struct {
	CreatedAt  time.Time `json:"created_at"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Importance string    `json:"importance"`
	ID         int64     `json:"id"`
}

type SendNotificationResponse struct {
	Notification NotificationData `json:"notification"`
	Recipients   int              `json:"recipients"`
}

type UserNotificationData struct {
	Notification NotificationData `json:"notification"`
	ID           int64            `json:"id"`
	IsRead       bool             `json:"is_read"`
}

type UnreadCount struct {
	Unread int64 `json:"unread"`
}
