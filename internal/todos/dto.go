package todos

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/db/models"
)

// TodoDTO is the transport shape for a shared checklist entry.
type TodoDTO struct {
	ID        uuid.UUID `json:"id"`
	CoupleID  uuid.UUID `json:"couple_id"`
	CreatedBy uuid.UUID `json:"created_by"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTodoRequest is the payload for adding a checklist entry.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required"`
}

func fromModel(m *models.Todo) *TodoDTO {
	if m == nil {
		return nil
	}
	return &TodoDTO{
		ID:        m.ID,
		CoupleID:  m.CoupleID,
		CreatedBy: m.CreatedBy,
		Text:      m.Text,
		Completed: m.Completed,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromModels(ms []models.Todo) []TodoDTO {
	out := make([]TodoDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *fromModel(&ms[i]))
	}
	return out
}
