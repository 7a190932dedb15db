package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
)

// GroceryItem is a shared shopping list entry scoped to a couple. Checking an
// item records who checked it and when; unchecking clears both.
type GroceryItem struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CoupleID  uuid.UUID             `gorm:"column:couple_id;type:uuid;not null;index"`
	CreatedBy uuid.UUID             `gorm:"column:created_by;type:uuid;not null"`
	Name      string                `gorm:"column:name;type:text;not null"`
	Category  enums.GroceryCategory `gorm:"column:category;type:text;not null;default:other"`
	Checked   bool                  `gorm:"column:checked;not null;default:false"`
	CheckedBy *uuid.UUID            `gorm:"column:checked_by;type:uuid"`
	CheckedAt *time.Time            `gorm:"column:checked_at;type:timestamptz"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
