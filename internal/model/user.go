package model

import "strings"

// User is a portal account. Points is a cached counter of the user's ledger.
type User struct {
	BaseModel
	Username     string  `gorm:"uniqueIndex:idx_users_username;type:varchar(150);not null" json:"username"`
	PasswordHash string  `gorm:"type:varchar(128);not null;default:''" json:"-"`
	Email        string  `gorm:"type:varchar(254);not null;default:''" json:"email"`
	FirstName    string  `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName     string  `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	Role         string  `gorm:"type:varchar(32);not null;default:''" json:"role"`
	IsStaff      bool    `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool    `gorm:"not null;default:false" json:"is_superuser"`
	IsActive     bool    `gorm:"not null" json:"is_active"`
	Points       int     `gorm:"not null;default:0" json:"points"`
	Avatar       *string `gorm:"type:varchar(255)" json:"avatar"`
}

func (User) TableName() string {
	return "users"
}

// EffectiveRole resolves the role used for authorization.
func (u *User) EffectiveRole() Role {
	return ResolveRole(u.Role, u.IsStaff, u.IsSuperuser)
}

// FullName joins first and last name, empty when both are blank.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// DisplayName falls back to the username when no full name is set.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}
