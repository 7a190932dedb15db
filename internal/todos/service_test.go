package todos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

type stubTodoRepo struct {
	byID map[uuid.UUID]*models.Todo
}

func newStubTodoRepo() *stubTodoRepo {
	return &stubTodoRepo{byID: map[uuid.UUID]*models.Todo{}}
}

func (s *stubTodoRepo) Create(ctx context.Context, todo *models.Todo) error {
	todo.ID = uuid.New()
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	s.byID[todo.ID] = todo
	return nil
}

func (s *stubTodoRepo) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]models.Todo, error) {
	var rows []models.Todo
	for _, todo := range s.byID {
		if todo.CoupleID == coupleID {
			rows = append(rows, *todo)
		}
	}
	return rows, nil
}

func (s *stubTodoRepo) FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Todo, error) {
	if todo, ok := s.byID[id]; ok && todo.CoupleID == coupleID {
		copied := *todo
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTodoRepo) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	if todo, ok := s.byID[id]; ok {
		todo.Completed = completed
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *stubTodoRepo) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type emittedChange struct {
	table enums.OutboxAggregateType
	kind  enums.ChangeKind
	rowID uuid.UUID
}

type stubOutbox struct {
	changes []emittedChange
}

func (s *stubOutbox) EmitRowChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, table enums.OutboxAggregateType, kind enums.ChangeKind, coupleID, rowID uuid.UUID, row any) error {
	s.changes = append(s.changes, emittedChange{table: table, kind: kind, rowID: rowID})
	return nil
}

func newTodosService(t *testing.T) (Service, *stubTodoRepo, *stubOutbox) {
	t.Helper()
	repo := newStubTodoRepo()
	ob := &stubOutbox{}
	svc, err := NewService(ServiceParams{
		TxRunner:    stubTxRunner{},
		RepoFactory: func(tx *gorm.DB) todoRepository { return repo },
		Outbox:      ob,
	})
	if err != nil {
		t.Fatalf("new todos service: %v", err)
	}
	return svc, repo, ob
}

func TestCreateTodoEmitsInsertEvent(t *testing.T) {
	svc, _, ob := newTodosService(t)
	coupleID, userID := uuid.New(), uuid.New()

	dto, err := svc.Create(context.Background(), coupleID, userID, CreateTodoRequest{Text: "  buy flowers "})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	if dto.Text != "buy flowers" {
		t.Fatalf("expected trimmed text, got %q", dto.Text)
	}
	if dto.Completed {
		t.Fatalf("new todo must start incomplete")
	}
	if len(ob.changes) != 1 || ob.changes[0].kind != enums.ChangeKindInsert || ob.changes[0].table != enums.AggregateTodo {
		t.Fatalf("expected insert event, got %+v", ob.changes)
	}
}

func TestCreateTodoRejectsEmptyText(t *testing.T) {
	svc, _, _ := newTodosService(t)

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateTodoRequest{Text: "   "})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestToggleFlipsCompletedBothWays(t *testing.T) {
	svc, _, ob := newTodosService(t)
	coupleID, userID := uuid.New(), uuid.New()

	dto, err := svc.Create(context.Background(), coupleID, userID, CreateTodoRequest{Text: "laundry"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, err := svc.Toggle(context.Background(), coupleID, userID, dto.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("expected completed after first toggle")
	}

	toggled, err = svc.Toggle(context.Background(), coupleID, userID, dto.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if toggled.Completed {
		t.Fatalf("expected incomplete after second toggle")
	}

	last := ob.changes[len(ob.changes)-1]
	if last.kind != enums.ChangeKindUpdate {
		t.Fatalf("expected update event, got %+v", last)
	}
}

func TestToggleIsCoupleScoped(t *testing.T) {
	svc, _, _ := newTodosService(t)
	coupleID, userID := uuid.New(), uuid.New()

	dto, err := svc.Create(context.Background(), coupleID, userID, CreateTodoRequest{Text: "secret"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Toggle(context.Background(), uuid.New(), userID, dto.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign couple, got %v", err)
	}
}

func TestDeleteEmitsDeleteEvent(t *testing.T) {
	svc, repo, ob := newTodosService(t)
	coupleID, userID := uuid.New(), uuid.New()

	dto, err := svc.Create(context.Background(), coupleID, userID, CreateTodoRequest{Text: "gone"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), coupleID, userID, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.byID[dto.ID]; ok {
		t.Fatalf("expected row removed")
	}
	last := ob.changes[len(ob.changes)-1]
	if last.kind != enums.ChangeKindDelete || last.rowID != dto.ID {
		t.Fatalf("expected delete event for %s, got %+v", dto.ID, last)
	}
}
