package dto

import "time"

type CreateTaskRequest struct {
	Title            string   `json:"title" validate:"required,max=255"`
	Description      string   `json:"description"`
	PhaseTexts       []string `json:"phase_texts" validate:"dive,required,max=500"`
	RecipientUserIDs []int64  `json:"recipient_user_ids" validate:"dive,gt=0"`
	ToHRTeam         bool     `json:"to_hr_team"`
}

// UpdateTaskRequest patches scalars. PhaseTexts replaces phases; either recipient field
// replaces the recipient set.
type UpdateTaskRequest struct {
	Title            *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description      *string   `json:"description"`
	PhaseTexts       *[]string `json:"phase_texts"`
	RecipientUserIDs *[]int64  `json:"recipient_user_ids"`
	ToHRTeam         *bool     `json:"to_hr_team"`
}

type TaskListQuery struct {
	Status string `query:"status"`
}

type TaskPhaseData struct {
	CompletedAt *time.Time `json:"completed_at"`
	Text        string     `json:"text"`
	Status      string     `json:"status"`
	ID          int64      `json:"id"`
	Order       int        `json:"order"`
}

type TaskRecipientData struct {
	User         *int64 `json:"user"`
	UserUsername string `json:"user_username"`
	UserFullName string `json:"user_full_name"`
	ID           int64  `json:"id"`
	IsHRTeam     bool   `json:"is_hr_team"`
}

type TaskData struct {
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	CreatorRole     string              `json:"creator_role"`
	Status          string              `json:"status"`
	Phases          []TaskPhaseData     `json:"phases"`
	Recipients      []TaskRecipientData `json:"recipients"`
	ID              int64               `json:"id"`
	CreatedBy       int64               `json:"created_by"`
	ProgressPercent float64             `json:"progress_percent"`
}

type CompletePhaseRequest struct {
	Result string `json:"result"`
}

type CompletePhaseResponse struct {
	Status  string `json:"status"`
	PhaseID int64  `json:"phase_id"`
	Order   int    `json:"order"`
}

type TaskCommentRequest struct {
	Text string `json:"text"`
}

type TaskCommentData struct {
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	ID         int64     `json:"id"`
	Author     int64     `json:"author"`
}
