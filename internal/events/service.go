package events

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

// Service defines the calendar behavior needed by the events controller.
type Service interface {
	Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateEventRequest) (*EventDTO, error)
	QuickAdd(ctx context.Context, coupleID, userID uuid.UUID, req QuickAddRequest) (*EventDTO, error)
	List(ctx context.Context, coupleID uuid.UUID) ([]EventDTO, error)
	Update(ctx context.Context, coupleID, userID, id uuid.UUID, req UpdateEventRequest) (*EventDTO, error)
	Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error
}

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]models.Event, error)
	FindScoped(ctx context.Context, coupleID, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

type outboxEmitter interface {
	EmitRowChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, table enums.OutboxAggregateType, kind enums.ChangeKind, coupleID, rowID uuid.UUID, row any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build an events service.
type ServiceParams struct {
	TxRunner    txRunner
	RepoFactory func(tx *gorm.DB) eventRepository
	Outbox      outboxEmitter
}

type service struct {
	tx     txRunner
	repo   func(tx *gorm.DB) eventRepository
	outbox outboxEmitter
}

// NewService constructs an events service with the provided dependencies.
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
func DefaultRepoFactory(db *gorm.DB) func(tx *gorm.DB) eventRepository {
	return func(tx *gorm.DB) eventRepository {
		if tx == nil {
			return NewRepository(db)
		}
		return NewRepository(tx)
	}
}

func (s *service) Create(ctx context.Context, coupleID, userID uuid.UUID, req CreateEventRequest) (*EventDTO, error) {
	event, err := buildEvent(coupleID, userID, req)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo(tx).Create(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create event")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindInsert, event)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(event), nil
}

// QuickAdd turns free text into an event via the best-effort annotator. The
// inference is cosmetic: a miss leaves the field empty, never an error.
func (s *service) QuickAdd(ctx context.Context, coupleID, userID uuid.UUID, req QuickAddRequest) (*EventDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "text is required")
	}
	if req.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	ann := Annotate(text)
	title := ann.Title
	if title == "" {
		title = text
	}

	event := &models.Event{
		CoupleID:  coupleID,
		CreatedBy: userID,
		Title:     title,
		Date:      req.Date,
		Time:      ann.Time,
		Location:  ann.Location,
		Category:  ann.Category,
		Color:     defaultColor(ann.Category),
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo(tx).Create(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create event")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindInsert, event)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(event), nil
}

func (s *service) List(ctx context.Context, coupleID uuid.UUID) ([]EventDTO, error) {
	rows, err := s.repo(nil).ListByCouple(ctx, coupleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list events")
	}
	return fromModels(rows), nil
}

func (s *service) Update(ctx context.Context, coupleID, userID, id uuid.UUID, req UpdateEventRequest) (*EventDTO, error) {
	updated, err := buildEvent(coupleID, userID, CreateEventRequest(req))
	if err != nil {
		return nil, err
	}

	var event *models.Event
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup event")
		}

		found.Title = updated.Title
		found.Date = updated.Date
		found.Time = updated.Time
		found.Location = updated.Location
		found.Category = updated.Category
		found.Color = updated.Color
		found.Description = updated.Description
		if err := repo.Update(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update event")
		}

		event = found
		return s.emit(ctx, tx, userID, enums.ChangeKindUpdate, event)
	})
	if err != nil {
		return nil, err
	}
	return fromModel(event), nil
}

func (s *service) Delete(ctx context.Context, coupleID, userID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo(tx)
		found, err := repo.FindScoped(ctx, coupleID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup event")
		}
		if err := repo.Delete(ctx, coupleID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete event")
		}
		return s.emit(ctx, tx, userID, enums.ChangeKindDelete, found)
	})
}

func buildEvent(coupleID, userID uuid.UUID, req CreateEventRequest) (*models.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if req.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	category := enums.EventCategoryGeneral
	if req.Category != "" {
		parsed, err := enums.ParseEventCategory(req.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", req.Category))
		}
		category = parsed
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = defaultColor(category)
	}

	return &models.Event{
		CoupleID:    coupleID,
		CreatedBy:   userID,
		Title:       title,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Category:    category,
		Color:       color,
		Description: req.Description,
	}, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.ChangeKind, event *models.Event) error {
	actor := &outbox.ActorRef{UserID: userID, CoupleID: &event.CoupleID}
	err := s.outbox.EmitRowChange(ctx, tx, actor, enums.AggregateEvent, kind, event.CoupleID, event.ID, fromModel(event))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record event change")
	}
	return nil
}
