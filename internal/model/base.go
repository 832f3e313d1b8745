package model

import (
	"time"
)

// BaseModel carries the surrogate key and gorm-managed timestamps.
// Rows are hard-deleted; owned children are removed by the owning service.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
}
