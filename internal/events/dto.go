package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
)

// EventDTO is the transport shape for a shared calendar entry.
type EventDTO struct {
	ID          uuid.UUID           `json:"id"`
	CoupleID    uuid.UUID           `json:"couple_id"`
	CreatedBy   uuid.UUID           `json:"created_by"`
	Title       string              `json:"title"`
	Date        time.Time           `json:"date"`
	Time        *string             `json:"time,omitempty"`
	Location    *string             `json:"location,omitempty"`
	Category    enums.EventCategory `json:"category"`
	Color       string              `json:"color"`
	Description *string             `json:"description,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CreateEventRequest is the payload for adding a calendar entry.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Time        *string   `json:"time,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Category    string    `json:"category" validate:"omitempty"`
	Color       string    `json:"color" validate:"omitempty"`
	Description *string   `json:"description,omitempty"`
}

// UpdateEventRequest carries a full replacement of the editable fields.
type UpdateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Time        *string   `json:"time,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Category    string    `json:"category" validate:"omitempty"`
	Color       string    `json:"color" validate:"omitempty"`
	Description *string   `json:"description,omitempty"`
}

// QuickAddRequest is free text plus the target date; the annotator fills in
// what it can.
type QuickAddRequest struct {
	Text string    `json:"text" validate:"required"`
	Date time.Time `json:"date" validate:"required"`
}

func fromModel(m *models.Event) *EventDTO {
	if m == nil {
		return nil
	}
	return &EventDTO{
		ID:          m.ID,
		CoupleID:    m.CoupleID,
		CreatedBy:   m.CreatedBy,
		Title:       m.Title,
		Date:        m.Date,
		Time:        m.Time,
		Location:    m.Location,
		Category:    m.Category,
		Color:       m.Color,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromModels(ms []models.Event) []EventDTO {
	out := make([]EventDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *fromModel(&ms[i]))
	}
	return out
}
