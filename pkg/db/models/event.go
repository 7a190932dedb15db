package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
)

// Event is a shared calendar entry scoped to a couple.
type Event struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CoupleID    uuid.UUID           `gorm:"column:couple_id;type:uuid;not null;index"`
	CreatedBy   uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	Title       string              `gorm:"column:title;type:text;not null"`
	Date        time.Time           `gorm:"column:date;type:date;not null"`
	Time        *string             `gorm:"column:time;type:text"`
	Location    *string             `gorm:"column:location;type:text"`
	Category    enums.EventCategory `gorm:"column:category;type:text;not null;default:general"`
	Color       string              `gorm:"column:color;type:text;not null"`
	Description *string             `gorm:"column:description;type:text"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
