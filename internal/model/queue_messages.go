package model

import "encoding/json"

// EventType names a workflow event published to the events exchange.
type EventType string

const (
	EventComplaintSubmitted EventType = "complaint.submitted"
	EventComplaintReplied   EventType = "complaint.replied"
	EventTaskAssigned       EventType = "task.assigned"
	EventPointsAdjusted     EventType = "points.adjusted"
	EventSurveySubmitted    EventType = "survey.submitted"
)

// EventMessage is the envelope carried over the broker. Payload holds one of the
// *Event structs below, keyed by Type.
type EventMessage struct {
	MessageID  string          `json:"message_id"` // idempotency key
	Type       EventType       `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type ComplaintSubmittedEvent struct {
	ComplaintID   int64              `json:"complaint_id"`
	SenderID      int64              `json:"sender_id"`
	RecipientType ComplaintRecipient `json:"recipient_type"`
	Title         string             `json:"title"`
}

type ComplaintRepliedEvent struct {
	ComplaintID   int64  `json:"complaint_id"`
	SenderID      int64  `json:"sender_id"`
	RespondedByID int64  `json:"responded_by_id"`
	Title         string `json:"title"`
}

type TaskAssignedEvent struct {
	TaskID  int64   `json:"task_id"`
	Title   string  `json:"title"`
	UserIDs []int64 `json:"user_ids"`
	HRTeam  bool    `json:"hr_team"`
}

type PointsAdjustedEvent struct {
	LogID   int64  `json:"log_id"`
	UserID  int64  `json:"user_id"`
	Delta   int    `json:"delta"`
	Reason  string `json:"reason"`
	Balance int    `json:"balance"`
}

type SurveySubmittedEvent struct {
	SurveyID     int64 `json:"survey_id"`
	SubmissionID int64 `json:"submission_id"`
	UserID       int64 `json:"user_id"`
}
