package groceries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
)

// Repository exposes shopping list persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new shopping list entry.
func (r *Repository) Create(ctx context.Context, item *models.GroceryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// ListByCouple returns the couple's entries, newest first, optionally filtered.
func (r *Repository) ListByCouple(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]models.GroceryItem, error) {
	q := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Order("created_at DESC")
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.HideChecked {
		q = q.Where("checked = ?", false)
	}

	var rows []models.GroceryItem
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindScoped loads one entry belonging to the couple.
func (r *Repository) FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.GroceryItem, error) {
	var item models.GroceryItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND couple_id = ?", id, coupleID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetChecked updates the checked flag along with who checked it and when.
func (r *Repository) SetChecked(ctx context.Context, id uuid.UUID, checked bool, checkedBy *uuid.UUID, checkedAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.GroceryItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"checked":    checked,
			"checked_by": checkedBy,
			"checked_at": checkedAt,
		}).Error
}

// ListChecked returns the couple's checked entries.
func (r *Repository) ListChecked(ctx context.Context, coupleID uuid.UUID) ([]models.GroceryItem, error) {
	var rows []models.GroceryItem
	err := r.db.WithContext(ctx).
		Where("couple_id = ? AND checked = ?", coupleID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteChecked removes every checked entry for the couple.
func (r *Repository) DeleteChecked(ctx context.Context, coupleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.GroceryItem{}, "couple_id = ? AND checked = ?", coupleID, true).Error
}

// Delete removes one entry belonging to the couple.
func (r *Repository) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.GroceryItem{}, "id = ? AND couple_id = ?", id, coupleID).Error
}
