package bills

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
)

// BillDTO is the transport shape for a shared household bill. Overdue is
// derived at read time, never stored.
type BillDTO struct {
	ID               uuid.UUID               `json:"id"`
	CoupleID         uuid.UUID               `json:"couple_id"`
	CreatedBy        uuid.UUID               `json:"created_by"`
	Name             string                  `json:"name"`
	BillType         enums.BillType          `json:"bill_type"`
	Amount           decimal.Decimal         `json:"amount"`
	DueDate          time.Time               `json:"due_date"`
	Recurring        bool                    `json:"recurring"`
	RecurrencePeriod *enums.RecurrencePeriod `json:"recurrence_period,omitempty"`
	PaymentStatus    enums.BillPaymentStatus `json:"payment_status"`
	PaidDate         *time.Time              `json:"paid_date,omitempty"`
	PaidBy           *uuid.UUID              `json:"paid_by,omitempty"`
	Overdue          bool                    `json:"overdue"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// CreateBillRequest is the payload for adding a bill.
type CreateBillRequest struct {
	Name             string          `json:"name" validate:"required"`
	BillType         string          `json:"bill_type" validate:"omitempty"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	DueDate          time.Time       `json:"due_date" validate:"required"`
	Recurring        bool            `json:"recurring"`
	RecurrencePeriod string          `json:"recurrence_period" validate:"omitempty"`
}

// ListFilter narrows the bill list by payment status.
type ListFilter struct {
	Status *enums.BillPaymentStatus
}

// Summary totals the couple's bills by payment status.
type Summary struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
	Overdue int             `json:"overdue_count"`
}

func fromModel(m *models.Bill, now time.Time) *BillDTO {
	if m == nil {
		return nil
	}
	return &BillDTO{
		ID:               m.ID,
		CoupleID:         m.CoupleID,
		CreatedBy:        m.CreatedBy,
		Name:             m.Name,
		BillType:         m.BillType,
		Amount:           m.Amount,
		DueDate:          m.DueDate,
		Recurring:        m.Recurring,
		RecurrencePeriod: m.RecurrencePeriod,
		PaymentStatus:    m.PaymentStatus,
		PaidDate:         m.PaidDate,
		PaidBy:           m.PaidBy,
		Overdue:          m.Overdue(now),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromModels(ms []models.Bill, now time.Time) []BillDTO {
	out := make([]BillDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *fromModel(&ms[i], now))
	}
	return out
}
