package model

import (
	"math"
	"time"
)

// TaskStatus is open until one of the terminal states is set.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusSuccess   TaskStatus = "success"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// TaskCreatorRole is the silo owning a task.
type TaskCreatorRole string

const (
	TaskCreatorManagement TaskCreatorRole = "management"
	TaskCreatorHR         TaskCreatorRole = "hr"
)

// TaskCreatorRoleFor returns the silo a creator-class role writes to.
func TaskCreatorRoleFor(role Role) TaskCreatorRole {
	if role.IsManagement() {
		return TaskCreatorManagement
	}
	return TaskCreatorHR
}

type PhaseStatus string

const (
	PhaseStatusPending PhaseStatus = "pending"
	PhaseStatusSuccess PhaseStatus = "success"
	PhaseStatusFailed  PhaseStatus = "failed"
)

type Task struct {
	BaseModel
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text;not null;default:''" json:"description"`
	CreatorRole TaskCreatorRole `gorm:"type:varchar(20);not null;index:idx_tasks_creator_role" json:"creator_role"`
	CreatedByID int64           `gorm:"not null" json:"created_by"`
	Status      TaskStatus      `gorm:"type:varchar(20);not null;default:'open';index:idx_tasks_status" json:"status"`

	Phases     []TaskPhase     `gorm:"foreignKey:TaskID" json:"phases"`
	Recipients []TaskRecipient `gorm:"foreignKey:TaskID" json:"recipients"`
}

func (Task) TableName() string {
	return "tasks"
}

// IsOpen reports whether the task still accepts phase completions and comments.
func (t *Task) IsOpen() bool {
	return t.Status == TaskStatusOpen
}

// ProgressPercent is success phases over all phases, two decimals, 0 without phases.
func (t *Task) ProgressPercent() float64 {
	if len(t.Phases) == 0 {
		return 0
	}
	done := 0
	for _, p := range t.Phases {
		if p.Status == PhaseStatusSuccess {
			done++
		}
	}
	return Round2(float64(done) * 100 / float64(len(t.Phases)))
}

// HasHRTeam reports whether the HR pool is among the recipients.
func (t *Task) HasHRTeam() bool {
	for _, r := range t.Recipients {
		if r.IsHRTeam {
			return true
		}
	}
	return false
}

// HasUserRecipient reports whether userID is an individual recipient.
func (t *Task) HasUserRecipient(userID int64) bool {
	for _, r := range t.Recipients {
		if r.UserID != nil && *r.UserID == userID {
			return true
		}
	}
	return false
}

type TaskPhase struct {
	BaseModel
	TaskID      int64       `gorm:"not null;uniqueIndex:idx_task_phases_task_order" json:"-"`
	Order       int         `gorm:"column:sort_order;not null;uniqueIndex:idx_task_phases_task_order" json:"order"`
	Text        string      `gorm:"type:varchar(500);not null" json:"text"`
	Status      PhaseStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CompletedAt *time.Time  `json:"completed_at"`
}

func (TaskPhase) TableName() string {
	return "task_phases"
}

// TaskRecipient targets either one user or the HR team pool, never both.
type TaskRecipient struct {
	BaseModel
	TaskID   int64  `gorm:"not null;index:idx_task_recipients_task" json:"-"`
	UserID   *int64 `gorm:"index:idx_task_recipients_user" json:"user"`
	User     *User  `gorm:"foreignKey:UserID" json:"-"`
	IsHRTeam bool   `gorm:"column:is_hr_team;not null;default:false;check:chk_task_recipients_target,(user_id IS NOT NULL AND is_hr_team = false) OR (user_id IS NULL AND is_hr_team = true)" json:"is_hr_team"`
}

func (TaskRecipient) TableName() string {
	return "task_recipients"
}

type TaskComment struct {
	BaseModel
	TaskID   int64  `gorm:"not null;index:idx_task_comments_task" json:"-"`
	AuthorID int64  `gorm:"not null" json:"author"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"-"`
	Text     string `gorm:"type:text;not null" json:"text"`
}

func (TaskComment) TableName() string {
	return "task_comments"
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
