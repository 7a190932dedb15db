package groceries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/outbox"
)

// Service defines the shopping list behavior needed by the groceries controller.
type Service interface {
	Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateGroceryItemRequest) (*GroceryItemDTO, error)
	List(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]GroceryItemDTO, error)
	ListGrouped(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]CategoryGroup, error)
	Toggle(ctx context.Context, coupleID, userID, id uuid.UUID) (*GroceryItemDTO, error)
	ClearChecked(ctx context.Context, coupleID, userID uuid.UUID) (int, error)
	Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error
}

type groceryRepository interface {
	Create(ctx context.Context, item *models.GroceryItem) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]models.GroceryItem, error)
	FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.GroceryItem, error)
	SetChecked(ctx context.Context, id uuid.UUID, checked bool, checkedBy *uuid.UUID, checkedAt *time.Time) error
	ListChecked(ctx context.Context, coupleID uuid.UUID) ([]models.GroceryItem, error)
	DeleteChecked(ctx context.Context, coupleID uuid.UUID) error
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

type outboxEmitter interface {
	EmitRowChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, table enums.OutboxAggregateType, kind enums.ChangeKind, coupleID, rowID uuid.UUID, row any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a groceries service.
type ServiceParams struct {
	TxRunner    txRunner
	RepoFactory func(tx *gorm.DB) groceryRepository
	Outbox      outboxEmitter
}

type service struct {
	tx     txRunner
	repo   func(tx *gorm.DB) groceryRepository
	outbox outboxEmitter
}

// NewService constructs a groceries service with the provided dependencies.
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
func DefaultRepoFactory(db *gorm.DB) func(tx *gorm.DB) groceryRepository {
	return func(tx *gorm.DB) groceryRepository {
		if tx == nil {
			return NewRepository(db)
		}
		return NewRepository(tx)
	}
}

func (s *service) Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateGroceryItemRequest) (*GroceryItemDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category := enums.GroceryCategoryOther
	if strings.TrimSpace(req.Category) != "" {
		parsed, err := enums.ParseGroceryCategory(req.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		category = parsed
	}

	item := &models.GroceryItem{
		CoupleID:  coupleID,
		CreatedBy: userID,
		Name:      name,
		Category:  category,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo(tx).Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create grocery item")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindInsert, item)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(item), nil
}

func (s *service) List(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]GroceryItemDTO, error) {
	rows, err := s.repo(nil).ListByCouple(ctx, coupleID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list grocery items")
	}
	return fromModels(rows), nil
}

// ListGrouped buckets the list by category in the fixed enum display order.
// Categories with no items are omitted; group ordering never depends on when
// items were added.
func (s *service) ListGrouped(ctx context.Context, coupleID uuid.UUID, filter ListFilter) ([]CategoryGroup, error) {
	items, err := s.List(ctx, coupleID, filter)
	if err != nil {
		return nil, err
	}

	byCategory := map[enums.GroceryCategory][]GroceryItemDTO{}
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, category := range enums.GroceryCategories {
		if bucket, ok := byCategory[category]; ok {
			groups = append(groups, CategoryGroup{Category: category, Items: bucket})
		}
	}
	return groups, nil
}

// Toggle flips the checked flag. Checking records who and when; unchecking
// clears both.
func (s *service) Toggle(ctx context.Context, coupleID, userID, id uuid.UUID) (*GroceryItemDTO, error) {
	var item *models.GroceryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "grocery item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup grocery item")
		}

		found.Checked = !found.Checked
		if found.Checked {
			now := time.Now().UTC()
			found.CheckedBy = &userID
			found.CheckedAt = &now
		} else {
			found.CheckedBy = nil
			found.CheckedAt = nil
		}
		if err := repo.SetChecked(ctx, found.ID, found.Checked, found.CheckedBy, found.CheckedAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle grocery item")
		}

		item = found
		return s.emit(ctx, tx, userID, enums.ChangeKindUpdate, item)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(item), nil
}

// ClearChecked removes every checked item in one transaction and emits a
// delete event per removed row. Returns the number of rows removed.
func (s *service) ClearChecked(ctx context.Context, coupleID, userID uuid.UUID) (int, error) {
	var removed int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		checked, err := repo.ListChecked(ctx, coupleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list checked items")
		}
		if len(checked) == 0 {
			return nil
		}
		if err := repo.DeleteChecked(ctx, coupleID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear checked items")
		}
		for i := range checked {
			if err := s.emit(ctx, tx, userID, enums.ChangeKindDelete, &checked[i]); err != nil {
				return err
			}
		}
		removed = len(checked)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *service) Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "grocery item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup grocery item")
		}
		if err := repo.Delete(ctx, coupleID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete grocery item")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindDelete, found)
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.ChangeKind, item *models.GroceryItem) error {
	actor := &outbox.ActorRef{UserID: userID, CoupleID: &item.CoupleID}
	err := s.outbox.EmitRowChange(ctx, tx, actor, enums.AggregateGroceryItem, kind, item.CoupleID, item.ID, fromModel(item))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record grocery change")
	}
	return nil
}
