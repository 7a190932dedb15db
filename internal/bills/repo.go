package bills

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
)

// Repository exposes bill persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new bill.
func (r *Repository) Create(ctx context.Context, bill *models.Bill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

// ListByCouple returns the couple's bills due soonest first, optionally
// filtered by payment status.
func (r *Repository) ListByCouple(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]models.Bill, error) {
	q := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Order("due_date")
	if filter.Status != nil {
		q = q.Where("payment_status = ?", *filter.Status)
	}

	var rows []models.Bill
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindScoped loads one bill belonging to the couple.
func (r *Repository) FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).
		Where("id = ? AND couple_id = ?", id, coupleID).
		First(&bill).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// SetPayment updates the payment status and its side effects.
func (r *Repository) SetPayment(ctx context.Context, id uuid.UUID, status string, paidDate *time.Time, paidBy *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": status,
			"paid_date":      paidDate,
			"paid_by":        paidBy,
		}).Error
}

// Delete removes one bill belonging to the couple.
func (r *Repository) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Bill{}, "id = ? AND couple_id = ?", id, coupleID).Error
}
