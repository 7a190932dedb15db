package bills

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/outbox"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubBillRepo struct {
	byID map[uuid.UUID]*models.Bill
}

func newStubBillRepo() *stubBillRepo {
	return &stubBillRepo{byID: map[uuid.UUID]*models.Bill{}}
}

func (s *stubBillRepo) Create(ctx context.Context, bill *models.Bill) error {
	bill.ID = uuid.New()
	bill.CreatedAt = time.Now()
	bill.UpdatedAt = bill.CreatedAt
	s.byID[bill.ID] = bill
	return nil
}

func (s *stubBillRepo) ListByCouple(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]models.Bill, error) {
	var rows []models.Bill
	for _, bill := range s.byID {
		if bill.CoupleID != coupleID {
			continue
		}
		if filter.Status != nil && bill.PaymentStatus != *filter.Status {
			continue
		}
		rows = append(rows, *bill)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DueDate.Before(rows[j].DueDate) })
	return rows, nil
}

func (s *stubBillRepo) FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Bill, error) {
	if bill, ok := s.byID[id]; ok && bill.CoupleID == coupleID {
		copied := *bill
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBillRepo) SetPayment(ctx context.Context, id uuid.UUID, status string, paidDate *time.Time, paidBy *uuid.UUID) error {
	bill, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	bill.PaymentStatus = enums.BillPaymentStatus(status)
	bill.PaidDate = paidDate
	bill.PaidBy = paidBy
	return nil
}

func (s *stubBillRepo) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubOutbox struct {
	kinds []enums.ChangeKind
}

func (s *stubOutbox) EmitRowChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, table enums.OutboxAggregateType, kind enums.ChangeKind, coupleID, rowID uuid.UUID, row any) error {
	s.kinds = append(s.kinds, kind)
	return nil
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newBillsService(t *testing.T) (Service, *stubBillRepo, *stubOutbox) {
	t.Helper()
	repo := newStubBillRepo()
	ob := &stubOutbox{}
	svc, err := NewService(ServiceParams{
		TxRunner:    stubTxRunner{},
		RepoFactory: func(tx *gorm.DB) billRepository { return repo },
		Outbox:      ob,
		Now:         func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new bills service: %v", err)
	}
	return svc, repo, ob
}

func sampleBill(name string, amount string, due time.Time) CreateBillRequest {
	return CreateBillRequest{
		Name:    name,
		Amount:  decimal.RequireFromString(amount),
		DueDate: due,
	}
}

func TestCreateBillStartsPending(t *testing.T) {
	svc, _, ob := newBillsService(t)

	dto, err := svc.Create(context.Background(), uuid.New(), uuid.New(), sampleBill("rent", "1200.00", fixedNow.AddDate(0, 0, 10)))
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if dto.PaymentStatus != enums.BillPaymentStatusPending {
		t.Fatalf("expected pending, got %s", dto.PaymentStatus)
	}
	if dto.Overdue {
		t.Fatalf("future bill must not be overdue")
	}
	if len(ob.kinds) != 1 || ob.kinds[0] != enums.ChangeKindInsert {
		t.Fatalf("expected insert event, got %v", ob.kinds)
	}
}

func TestCreateRecurringBillRequiresPeriod(t *testing.T) {
	svc, _, _ := newBillsService(t)

	req := sampleBill("gym", "30.00", fixedNow.AddDate(0, 1, 0))
	req.Recurring = true

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), req)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	req.RecurrencePeriod = "monthly"
	dto, err := svc.Create(context.Background(), uuid.New(), uuid.New(), req)
	if err != nil {
		t.Fatalf("create recurring bill: %v", err)
	}
	if dto.RecurrencePeriod == nil || *dto.RecurrencePeriod != enums.RecurrencePeriodMonthly {
		t.Fatalf("expected monthly period, got %v", dto.RecurrencePeriod)
	}
}

func TestTogglePaymentRecordsPayerAndClearsOnRevert(t *testing.T) {
	svc, _, _ := newBillsService(t)
	coupleID, userID := uuid.New(), uuid.New()

	dto, err := svc.Create(context.Background(), coupleID, userID, sampleBill("water", "45.50", fixedNow.AddDate(0, 0, 5)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid, err := svc.TogglePayment(context.Background(), coupleID, userID, dto.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if paid.PaymentStatus != enums.BillPaymentStatusPaid {
		t.Fatalf("expected paid, got %s", paid.PaymentStatus)
	}
	if paid.PaidBy == nil || *paid.PaidBy != userID {
		t.Fatalf("expected payer recorded")
	}
	if paid.PaidDate == nil || !paid.PaidDate.Equal(fixedNow) {
		t.Fatalf("expected paid date %v, got %v", fixedNow, paid.PaidDate)
	}

	pending, err := svc.TogglePayment(context.Background(), coupleID, userID, dto.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if pending.PaymentStatus != enums.BillPaymentStatusPending || pending.PaidBy != nil || pending.PaidDate != nil {
		t.Fatalf("expected payment fields cleared, got %+v", pending)
	}
}

func TestOverdueIsDerivedFromStatusAndDueDate(t *testing.T) {
	svc, _, _ := newBillsService(t)
	coupleID, userID := uuid.New(), uuid.New()

	dto, err := svc.Create(context.Background(), coupleID, userID, sampleBill("late", "10.00", fixedNow.AddDate(0, 0, -3)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !dto.Overdue {
		t.Fatalf("unpaid past-due bill must be overdue")
	}

	paid, err := svc.TogglePayment(context.Background(), coupleID, userID, dto.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if paid.Overdue {
		t.Fatalf("paid bill must not be overdue")
	}
}

func TestSummarizeTotalsByStatus(t *testing.T) {
	svc, _, _ := newBillsService(t)
	coupleID, userID := uuid.New(), uuid.New()

	late, err := svc.Create(context.Background(), coupleID, userID, sampleBill("late", "100.25", fixedNow.AddDate(0, 0, -1)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), coupleID, userID, sampleBill("upcoming", "49.75", fixedNow.AddDate(0, 0, 7))); err != nil {
		t.Fatalf("create: %v", err)
	}
	settled, err := svc.Create(context.Background(), coupleID, userID, sampleBill("settled", "200.00", fixedNow.AddDate(0, 0, 3)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.TogglePayment(context.Background(), coupleID, userID, settled.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	summary, err := svc.Summarize(context.Background(), coupleID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !summary.Total.Equal(decimal.RequireFromString("350.00")) {
		t.Fatalf("total mismatch: %s", summary.Total)
	}
	if !summary.Paid.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("paid mismatch: %s", summary.Paid)
	}
	if !summary.Pending.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("pending mismatch: %s", summary.Pending)
	}
	if summary.Overdue != 1 {
		t.Fatalf("expected 1 overdue (%s), got %d", late.ID, summary.Overdue)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, _ := newBillsService(t)
	coupleID, userID := uuid.New(), uuid.New()

	paid, err := svc.Create(context.Background(), coupleID, userID, sampleBill("paid", "10.00", fixedNow.AddDate(0, 0, 1)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.TogglePayment(context.Background(), coupleID, userID, paid.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.Create(context.Background(), coupleID, userID, sampleBill("open", "20.00", fixedNow.AddDate(0, 0, 2))); err != nil {
		t.Fatalf("create: %v", err)
	}

	status := enums.BillPaymentStatusPaid
	rows, err := svc.List(context.Background(), coupleID, ListFilter{Status: &status})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "paid" {
		t.Fatalf("expected only paid bill, got %+v", rows)
	}
}
