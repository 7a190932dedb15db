package bills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/outbox"
)

// Service defines the bill-tracking behavior needed by the bills controller.
type Service interface {
	Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateBillRequest) (*BillDTO, error)
	List(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]BillDTO, error)
	TogglePayment(ctx context.Context, coupleID, userID, id uuid.UUID) (*BillDTO, error)
	Summarize(ctx context.Context, coupleID uuid.UUID) (*Summary, error)
	Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error
}

type billRepository interface {
	Create(ctx context.Context, bill *models.Bill) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]models.Bill, error)
	FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Bill, error)
	SetPayment(ctx context.Context, id uuid.UUID, status string, paidDate *time.Time, paidBy *uuid.UUID) error
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

type outboxEmitter interface {
	EmitRowChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, table enums.OutboxAggregateType, kind enums.ChangeKind, coupleID, rowID uuid.UUID, row any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a bills service.
type ServiceParams struct {
	TxRunner    txRunner
	RepoFactory func(tx *gorm.DB) billRepository
	Outbox      outboxEmitter
	Now         func() time.Time
}

type service struct {
	tx     txRunner
	repo   func(tx *gorm.DB) billRepository
	outbox outboxEmitter
	now    func() time.Time
}

// NewService constructs a bills service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.RepoFactory == nil {
		return nil, fmt.Errorf("repo factory is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:     params.TxRunner,
		repo:   params.RepoFactory,
		outbox: params.Outbox,
		now:    now,
	}, nil
}

// DefaultRepoFactory binds repositories to the active transaction, falling
// back to the base connection for plain reads.
func DefaultRepoFactory(db *gorm.DB) func(tx *gorm.DB) billRepository {
	return func(tx *gorm.DB) billRepository {
		if tx == nil {
			return NewRepository(db)
		}
		return NewRepository(tx)
	}
}

func (s *service) Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateBillRequest) (*BillDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if req.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	if req.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_date is required")
	}

	billType := enums.BillTypeOther
	if strings.TrimSpace(req.BillType) != "" {
		parsed, err := enums.ParseBillType(req.BillType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid bill type")
		}
		billType = parsed
	}

	var period *enums.RecurrencePeriod
	if req.Recurring {
		if strings.TrimSpace(req.RecurrencePeriod) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "recurrence_period is required for recurring bills")
		}
		parsed, err := enums.ParseRecurrencePeriod(req.RecurrencePeriod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid recurrence period")
		}
		period = &parsed
	}

	bill := &models.Bill{
		CoupleID:         coupleID,
		CreatedBy:        userID,
		Name:             name,
		BillType:         billType,
		Amount:           req.Amount.Round(2),
		DueDate:          req.DueDate,
		Recurring:        req.Recurring,
		RecurrencePeriod: period,
		PaymentStatus:    enums.BillPaymentStatusPending,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo(tx).Create(ctx, bill); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bill")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindInsert, bill)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(bill, s.now()), nil
}

func (s *service) List(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]BillDTO, error) {
	rows, err := s.repo(nil).ListByCouple(ctx, coupleID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bills")
	}
	return fromModels(rows, s.now()), nil
}

// TogglePayment flips payment status. Marking paid records the payer and the
// payment date; flipping back to pending clears both.
func (s *service) TogglePayment(ctx context.Context, coupleID, userID, id uuid.UUID) (*BillDTO, error) {
	var bill *models.Bill
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup bill")
		}

		if found.PaymentStatus == enums.BillPaymentStatusPaid {
			found.PaymentStatus = enums.BillPaymentStatusPending
			found.PaidDate = nil
			found.PaidBy = nil
		} else {
			now := s.now()
			found.PaymentStatus = enums.BillPaymentStatusPaid
			found.PaidDate = &now
			found.PaidBy = &userID
		}
		if err := repo.SetPayment(ctx, found.ID, string(found.PaymentStatus), found.PaidDate, found.PaidBy); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle bill payment")
		}

		bill = found
		return s.emit(ctx, tx, userID, enums.ChangeKindUpdate, bill)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(bill, s.now()), nil
}

// Summarize totals the couple's bills by payment status using exact decimals.
func (s *service) Summarize(ctx context.Context, coupleID uuid.UUID) (*Summary, error) {
	rows, err := s.repo(nil).ListByCouple(ctx, coupleID, ListFilter{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bills")
	}

	now := s.now()
	summary := &Summary{
		Total:   decimal.Zero,
		Paid:    decimal.Zero,
		Pending: decimal.Zero,
	}
	for i := range rows {
		bill := &rows[i]
		summary.Total = summary.Total.Add(bill.Amount)
		if bill.PaymentStatus == enums.BillPaymentStatusPaid {
			summary.Paid = summary.Paid.Add(bill.Amount)
		} else {
			summary.Pending = summary.Pending.Add(bill.Amount)
		}
		if bill.Overdue(now) {
			summary.Overdue++
		}
	}
	return summary, nil
}

func (s *service) Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup bill")
		}
		if err := repo.Delete(ctx, coupleID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete bill")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindDelete, found)
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.ChangeKind, bill *models.Bill) error {
	actor := &outbox.ActorRef{UserID: userID, CoupleID: &bill.CoupleID}
	err := s.outbox.EmitRowChange(ctx, tx, actor, enums.AggregateBill, kind, bill.CoupleID, bill.ID, fromModel(bill, s.now()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record bill change")
	}
	return nil
}
