package model

import "time"

// ComplaintRecipient is the role class a complaint is addressed to.
type ComplaintRecipient string

const (
	ComplaintRecipientHR      ComplaintRecipient = "hr"
	ComplaintRecipientManager ComplaintRecipient = "manager"
)

func (r ComplaintRecipient) Valid() bool {
	return r == ComplaintRecipientHR || r == ComplaintRecipientManager
}

// ComplaintRecipientFor returns the inbox a role reads, false for roles without one.
func ComplaintRecipientFor(role Role) (ComplaintRecipient, bool) {
	switch role {
	case RoleHR:
		return ComplaintRecipientHR, true
	case RoleManager:
		return ComplaintRecipientManager, true
	}
	return "", false
}

// Complaint tracks read state separately for the sender and the recipient side.
type Complaint struct {
	BaseModel
	SenderID          int64              `gorm:"not null;index:idx_complaints_sender" json:"sender_id"`
	Sender            *User              `gorm:"foreignKey:SenderID" json:"-"`
	RecipientType     ComplaintRecipient `gorm:"type:varchar(10);not null;index:idx_complaints_recipient" json:"recipient_type"`
	Title             string             `gorm:"type:varchar(255);not null" json:"title"`
	Message           string             `gorm:"type:text;not null" json:"message"`
	Response          *string            `gorm:"type:text" json:"response"`
	IsResponded       bool               `gorm:"not null;default:false" json:"is_responded"`
	RespondedByID     *int64             `json:"responded_by_id"`
	RespondedAt       *time.Time         `json:"responded_at"`
	IsSeenByEmployee  bool               `gorm:"not null" json:"is_seen_by_employee"`
	IsSeenByRecipient bool               `gorm:"not null;default:false" json:"is_seen_by_recipient"`
}

func (Complaint) TableName() string {
	return "complaints"
}
