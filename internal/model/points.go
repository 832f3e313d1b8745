package model

// EmployeePointLog is one append-only ledger entry. A user's counter equals the sum of deltas.
type EmployeePointLog struct {
	BaseModel
	UserID      int64  `gorm:"not null;index:idx_point_logs_user" json:"user_id"`
	User        *User  `gorm:"foreignKey:UserID" json:"-"`
	Delta       int    `gorm:"not null" json:"delta"`
	Reason      string `gorm:"type:varchar(255);not null;default:''" json:"reason"`
	CreatedByID *int64 `json:"created_by_id"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (EmployeePointLog) TableName() string {
	return "employee_point_logs"
}

// HonorBoardSettingID is the primary key of the singleton settings row.
const HonorBoardSettingID int64 = 1

// HonorBoardSetting gates month and year leaderboards independently.
type HonorBoardSetting struct {
	BaseModel
	EnabledMonth bool `gorm:"not null" json:"enabled_month"`
	EnabledYear  bool `gorm:"not null" json:"enabled_year"`
}

func (HonorBoardSetting) TableName() string {
	return "honor_board_settings"
}

// Enabled is the combined flag older clients read.
func (s *HonorBoardSetting) Enabled() bool {
	return s.EnabledMonth || s.EnabledYear
}
