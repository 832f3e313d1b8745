package model

import "time"

type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "draft"
	SurveyStatusPublished SurveyStatus = "published"
	SurveyStatusArchived  SurveyStatus = "archived"
)

func (s SurveyStatus) Valid() bool {
	switch s {
	case SurveyStatusDraft, SurveyStatusPublished, SurveyStatusArchived:
		return true
	}
	return false
}

// Survey belongs to the authoring silo recorded in CreatorRole (manager or hr).
type Survey struct {
	BaseModel
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text;not null;default:''" json:"description"`
	CreatorID   int64        `gorm:"not null" json:"creator"`
	CreatorRole Role         `gorm:"type:varchar(20);not null;index:idx_surveys_creator_role" json:"creator_role"`
	Status      SurveyStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_surveys_status" json:"status"`
	PublishedAt *time.Time   `json:"published_at"`

	Questions []SurveyQuestion `gorm:"foreignKey:SurveyID" json:"questions"`
}

func (Survey) TableName() string {
	return "surveys"
}

type SurveyQuestion struct {
	BaseModel
	SurveyID int64          `gorm:"not null;index:idx_survey_questions_survey" json:"-"`
	Text     string         `gorm:"type:varchar(500);not null" json:"text"`
	Required bool           `gorm:"not null" json:"required"`
	Order    int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	Options  []SurveyOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (SurveyQuestion) TableName() string {
	return "survey_questions"
}

type SurveyOption struct {
	BaseModel
	QuestionID int64  `gorm:"not null;index:idx_survey_options_question" json:"-"`
	Text       string `gorm:"type:varchar(255);not null" json:"text"`
	Order      int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

func (SurveyOption) TableName() string {
	return "survey_options"
}

// SurveySubmission is unique per (survey, user).
type SurveySubmission struct {
	BaseModel
	SurveyID int64          `gorm:"not null;uniqueIndex:idx_survey_submissions_survey_user" json:"survey"`
	UserID   int64          `gorm:"not null;uniqueIndex:idx_survey_submissions_survey_user" json:"user"`
	Answers  []SurveyAnswer `gorm:"foreignKey:SubmissionID" json:"answers"`
}

func (SurveySubmission) TableName() string {
	return "survey_submissions"
}

// SurveyAnswer is unique per (submission, question).
type SurveyAnswer struct {
	BaseModel
	SubmissionID     int64 `gorm:"not null;uniqueIndex:idx_survey_answers_submission_question" json:"-"`
	QuestionID       int64 `gorm:"not null;uniqueIndex:idx_survey_answers_submission_question;index:idx_survey_answers_question" json:"question"`
	SelectedOptionID int64 `gorm:"not null;index:idx_survey_answers_option" json:"selected_option"`
}

func (SurveyAnswer) TableName() string {
	return "survey_answers"
}
