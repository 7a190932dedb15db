package models

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a shared checklist entry scoped to a couple.
type Todo struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CoupleID  uuid.UUID `gorm:"column:couple_id;type:uuid;not null;index"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	Text      string    `gorm:"column:text;type:text;not null"`
	Completed bool      `gorm:"column:completed;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
