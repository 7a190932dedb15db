package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
)

// Repository exposes calendar persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new calendar entry.
func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByCouple returns the couple's entries ordered by date ascending.
func (r *Repository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]models.Event, error) {
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindScoped loads one entry belonging to the couple.
func (r *Repository) FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("id = ? AND couple_id = ?", id, coupleID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Update persists the full editable state of the entry.
func (r *Repository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"title":       event.Title,
			"date":        event.Date,
			"time":        event.Time,
			"location":    event.Location,
			"category":    event.Category,
			"color":       event.Color,
			"description": event.Description,
		}).Error
}

// Delete removes one entry belonging to the couple.
func (r *Repository) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Event{}, "id = ? AND couple_id = ?", id, coupleID).Error
}
