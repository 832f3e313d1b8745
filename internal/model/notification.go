package model

// NotificationImportance is the display priority of a notification.
type NotificationImportance string

const (
	NotificationImportanceNormal    NotificationImportance = "normal"
	NotificationImportanceImportant NotificationImportance = "important"
)

func (i NotificationImportance) Valid() bool {
	return i == NotificationImportanceNormal || i == NotificationImportanceImportant
}

// Notification is a message fanned out to users through UserNotification rows.
type Notification struct {
	BaseModel
	Title      string                 `gorm:"type:varchar(255);not null" json:"title"`
	Message    string                 `gorm:"type:text;not null" json:"message"`
	Importance NotificationImportance `gorm:"type:varchar(10);not null;default:'normal'" json:"importance"`
}

func (Notification) TableName() string {
	return "notifications"
}

// UserNotification is one recipient's copy of a notification with its read state.
type UserNotification struct {
	BaseModel
	UserID         int64         `gorm:"not null;uniqueIndex:idx_user_notifications_pair;index:idx_user_notifications_user_read,priority:1" json:"user_id"`
	NotificationID int64         `gorm:"not null;uniqueIndex:idx_user_notifications_pair" json:"notification_id"`
	Notification   *Notification `gorm:"foreignKey:NotificationID" json:"notification,omitempty"`
	IsRead         bool          `gorm:"not null;default:false;index:idx_user_notifications_user_read,priority:2" json:"is_read"`
}

func (UserNotification) TableName() string {
	return "user_notifications"
}
