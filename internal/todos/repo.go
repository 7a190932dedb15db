package todos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
)

// Repository exposes checklist persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new checklist entry.
func (r *Repository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// ListByCouple returns the couple's entries, newest first.
func (r *Repository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]models.Todo, error) {
	var rows []models.Todo
	err := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindScoped loads one entry belonging to the couple.
func (r *Repository) FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND couple_id = ?", id, coupleID).
		First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// SetCompleted flips the completed flag.
func (r *Repository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", id).
		Update("completed", completed).Error
}

// Delete removes one entry belonging to the couple.
func (r *Repository) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Todo{}, "id = ? AND couple_id = ?", id, coupleID).Error
}
