package groceries

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
)

// GroceryItemDTO is the transport shape for a shopping list entry.
type GroceryItemDTO struct {
	ID        uuid.UUID             `json:"id"`
	CoupleID  uuid.UUID             `json:"couple_id"`
	CreatedBy uuid.UUID             `json:"created_by"`
	Name      string                `json:"name"`
	Category  enums.GroceryCategory `json:"category"`
	Checked   bool                  `json:"checked"`
	CheckedBy *uuid.UUID            `json:"checked_by,omitempty"`
	CheckedAt *time.Time            `json:"checked_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// CreateGroceryItemRequest is the payload for adding a shopping list entry.
type CreateGroceryItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"omitempty"`
}

// ListFilter narrows the flat list view.
type ListFilter struct {
	Category    *enums.GroceryCategory
	HideChecked bool
}

// CategoryGroup is one bucket of the grouped list view.
type CategoryGroup struct {
	Category enums.GroceryCategory `json:"category"`
	Items    []GroceryItemDTO      `json:"items"`
}

func fromModel(m *models.GroceryItem) *GroceryItemDTO {
	if m == nil {
		return nil
	}
	return &GroceryItemDTO{
		ID:        m.ID,
		CoupleID:  m.CoupleID,
		CreatedBy: m.CreatedBy,
		Name:      m.Name,
		Category:  m.Category,
		Checked:   m.Checked,
		CheckedBy: m.CheckedBy,
		CheckedAt: m.CheckedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromModels(ms []models.GroceryItem) []GroceryItemDTO {
	out := make([]GroceryItemDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *fromModel(&ms[i]))
	}
	return out
}
