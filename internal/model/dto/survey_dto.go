package dto

import "time"

type SurveyOptionInput struct {
	Order *int   `json:"order"`
	Text  string `json:"text" validate:"required,max=255"`
}

type SurveyQuestionInput struct {
	Required *bool               `json:"required"`
	Order    *int                `json:"order"`
	Text     string              `json:"text" validate:"required,max=500"`
	Options  []SurveyOptionInput `json:"options" validate:"dive"`
}

type CreateSurveyRequest struct {
	Title       string                `json:"title" validate:"required,max=255"`
	Description string                `json:"description"`
	Status      string                `json:"status" validate:"omitempty,oneof=draft published archived"`
	Questions   []SurveyQuestionInput `json:"questions" validate:"dive"`
}

// UpdateSurveyRequest is a partial update. A non-nil Questions replaces the whole
// question tree, including when it points at an empty list.
type UpdateSurveyRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string                `json:"description"`
	Status      *string                `json:"status" validate:"omitempty,oneof=draft published archived"`
	Questions   *[]SurveyQuestionInput `json:"questions"`
}

type ChangeSurveyStatusRequest struct {
	Status string `json:"status"`
}

type SurveyAnswerInput struct {
	Question       int64 `json:"question" validate:"required"`
	SelectedOption int64 `json:"selected_option" validate:"required"`
}

type SubmitSurveyRequest struct {
	Answers []SurveyAnswerInput `json:"answers" validate:"dive"`
}

type SubmitSurveyResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        int64     `json:"id"`
}

type SurveyOptionResult struct {
	Text       string  `json:"text"`
	ID         int64   `json:"id"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SurveyQuestionResult struct {
	Text     string               `json:"text"`
	Options  []SurveyOptionResult `json:"options"`
	ID       int64                `json:"id"`
	Required bool                 `json:"required"`
}

type SurveyResults struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Status           string                 `json:"status"`
	CreatorRole      string                 `json:"creator_role"`
	Questions        []SurveyQuestionResult `json:"questions"`
	ID               int64                  `json:"id"`
	TotalSubmissions int64                  `json:"total_submissions"`
}

type SubmissionAnswer struct {
	Question       int64 `json:"question"`
	SelectedOption int64 `json:"selected_option"`
}

type SubmissionData struct {
	CreatedAt time.Time          `json:"created_at"`
	Answers   []SubmissionAnswer `json:"answers"`
	ID        int64              `json:"id"`
	Survey    int64              `json:"survey"`
	User      int64              `json:"user"`
}

type MySubmissionResponse struct {
	Submission *SubmissionData `json:"submission,omitempty"`
	Exists     bool            `json:"exists"`
}
