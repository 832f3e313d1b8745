package model

// FormCategory classifies a downloadable form.
type FormCategory string

const (
	FormCategoryAdministrative FormCategory = "administrative"
	FormCategoryFinancial      FormCategory = "financial"
	FormCategoryTechnical      FormCategory = "technical"
	FormCategoryOther          FormCategory = "other"
)

type Section struct {
	BaseModel
	NameAr string `gorm:"type:varchar(255);not null" json:"name_ar"`
	NameEn string `gorm:"type:varchar(255);not null" json:"name_en"`
}

func (Section) TableName() string {
	return "sections"
}

type Form struct {
	BaseModel
	SectionID    int64        `gorm:"not null;index:idx_forms_section" json:"section_id"`
	Section      *Section     `gorm:"foreignKey:SectionID" json:"section,omitempty"`
	SerialNumber string       `gorm:"uniqueIndex:idx_forms_serial;type:varchar(100);not null" json:"serial_number"`
	NameAr       string       `gorm:"type:varchar(255);not null" json:"name_ar"`
	NameEn       string       `gorm:"type:varchar(255);not null" json:"name_en"`
	Category     FormCategory `gorm:"type:varchar(20);not null;default:'other'" json:"category"`
	Description  string       `gorm:"type:text;not null;default:''" json:"description"`
	File         string       `gorm:"type:varchar(255);not null" json:"file"`
}

func (Form) TableName() string {
	return "forms"
}

// UserSectionPermission grants a user visibility of one section.
type UserSectionPermission struct {
	BaseModel
	UserID    int64 `gorm:"not null;uniqueIndex:idx_user_section_permissions_pair" json:"user_id"`
	SectionID int64 `gorm:"not null;uniqueIndex:idx_user_section_permissions_pair" json:"section_id"`
}

func (UserSectionPermission) TableName() string {
	return "user_section_permissions"
}
