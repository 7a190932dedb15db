package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coupleshub/backend/pkg/enums"
)

// Bill is a shared household bill scoped to a couple. Whether a bill is
// overdue is derived from payment_status and due_date, never stored.
type Bill struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CoupleID         uuid.UUID               `gorm:"column:couple_id;type:uuid;not null;index"`
	CreatedBy        uuid.UUID               `gorm:"column:created_by;type:uuid;not null"`
	Name             string                  `gorm:"column:name;type:text;not null"`
	BillType         enums.BillType          `gorm:"column:bill_type;type:text;not null;default:other"`
	Amount           decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	DueDate          time.Time               `gorm:"column:due_date;type:date;not null"`
	Recurring        bool                    `gorm:"column:recurring;not null;default:false"`
	RecurrencePeriod *enums.RecurrencePeriod `gorm:"column:recurrence_period;type:text"`
	PaymentStatus    enums.BillPaymentStatus `gorm:"column:payment_status;type:text;not null;default:pending"`
	PaidDate         *time.Time              `gorm:"column:paid_date;type:date"`
	PaidBy           *uuid.UUID              `gorm:"column:paid_by;type:uuid"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// Overdue reports whether the bill is unpaid past its due date.
func (b Bill) Overdue(now time.Time) bool {
	return b.PaymentStatus != enums.BillPaymentStatusPaid && b.DueDate.Before(now)
}
