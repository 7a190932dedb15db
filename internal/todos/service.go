package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/outbox"
)

// Service defines the checklist behavior needed by the todos controller.
type Service interface {
	Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateTodoRequest) (*TodoDTO, error)
	List(ctx context.Context, coupleID uuid.UUID) ([]TodoDTO, error)
	Toggle(ctx context.Context, coupleID, userID, id uuid.UUID) (*TodoDTO, error)
	Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error
}

type todoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]models.Todo, error)
	FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Todo, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

type outboxEmitter interface {
	EmitRowChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, table enums.OutboxAggregateType, kind enums.ChangeKind, coupleID, rowID uuid.UUID, row any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a todos service.
type ServiceParams struct {
	TxRunner    txRunner
	RepoFactory func(tx *gorm.DB) todoRepository
	Outbox      outboxEmitter
}

type service struct {
	tx     txRunner
	repo   func(tx *gorm.DB) todoRepository
	outbox outboxEmitter
}

// NewService constructs a todos service with the provided dependencies.
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
	return &service{
		tx:     params.TxRunner,
		repo:   params.RepoFactory,
		outbox: params.Outbox,
	}, nil
}

// DefaultRepoFactory binds repositories to the active transaction, falling
// back to the base connection for plain reads.
func DefaultRepoFactory(db *gorm.DB) func(tx *gorm.DB) todoRepository {
	return func(tx *gorm.DB) todoRepository {
		if tx == nil {
			return NewRepository(db)
		}
		return NewRepository(tx)
	}
}

func (s *service) Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateTodoRequest) (*TodoDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "text is required")
	}

	todo := &models.Todo{
		CoupleID:  coupleID,
		CreatedBy: userID,
		Text:      text,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo(tx).Create(ctx, todo); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create todo")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindInsert, todo)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(todo), nil
}

func (s *service) List(ctx context.Context, coupleID uuid.UUID) ([]TodoDTO, error) {
	rows, err := s.repo(nil).ListByCouple(ctx, coupleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list todos")
	}
	return fromModels(rows), nil
}

func (s *service) Toggle(ctx context.Context, coupleID, userID, id uuid.UUID) (*TodoDTO, error) {
	var todo *models.Todo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "todo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup todo")
		}

		found.Completed = !found.Completed
		if err := repo.SetCompleted(ctx, found.ID, found.Completed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle todo")
		}

		todo = found
		return s.emit(ctx, tx, userID, enums.ChangeKindUpdate, todo)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(todo), nil
}

func (s *service) Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "todo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup todo")
		}
		if err := repo.Delete(ctx, coupleID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete todo")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindDelete, found)
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.ChangeKind, todo *models.Todo) error {
	actor := &outbox.ActorRef{UserID: userID, CoupleID: &todo.CoupleID}
	err := s.outbox.EmitRowChange(ctx, tx, actor, enums.AggregateTodo, kind, todo.CoupleID, todo.ID, fromModel(todo))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record todo change")
	}
	return nil
}
