package dto

import "time"

type SubmitComplaintRequest struct {
	RecipientType string `json:"recipient_type" validate:"required,oneof=hr manager"`
	Title         string `json:"title" validate:"required,max=255"`
	Message       string `json:"message" validate:"required"`
}

type ReplyComplaintRequest struct {
	Response string `json:"response"`
}

type ComplaintData struct {
	CreatedAt         time.Time  `json:"created_at"`
	RespondedAt       *time.Time `json:"responded_at"`
	Response          *string    `json:"response"`
	RespondedByID     *int64     `json:"responded_by"`
	SenderUsername    string     `json:"sender_username"`
	RecipientType     string     `json:"recipient_type"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	ID                int64      `json:"id"`
	SenderID          int64      `json:"sender"`
	IsResponded       bool       `json:"is_responded"`
	IsSeenByEmployee  bool       `json:"is_seen_by_employee"`
	IsSeenByRecipient bool       `json:"is_seen_by_recipient"`
}

type MarkAllSeenResponse struct {
	Updated int64 `json:"updated"`
}

type HasUnreadResponse struct {
	HasNew bool `json:"has_new"`
}
