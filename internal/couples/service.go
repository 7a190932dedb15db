package couples

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/internal/users"
	"github.com/coupleshub/backend/pkg/config"
	pkgdb "github.com/coupleshub/backend/pkg/db"
	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/outbox"
	"github.com/coupleshub/backend/pkg/security"
)

const fallbackMinPasswordLength = 8

// Service defines the pairing behavior needed by the couples controller.
type Service interface {
	EnsureRelationship(ctx context.Context, userID uuid.UUID) (*RelationshipDTO, error)
	GetRelationship(ctx context.Context, userID uuid.UUID) (*RelationshipDTO, error)
	InvitePartner(ctx context.Context, userID uuid.UUID, req InvitePartnerRequest) (*RelationshipDTO, error)
	ValidateToken(ctx context.Context, token string) (*InvitationPreview, error)
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*AcceptResult, error)
	GetPartnerProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

type relationshipRepository interface {
	Create(ctx context.Context, partnerAID uuid.UUID) (*models.CoupleRelationship, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.CoupleRelationship, error)
	FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.CoupleRelationship, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CoupleRelationship, error)
	FindByToken(ctx context.Context, token string) (*models.CoupleRelationship, error)
	FindByTokenForUpdate(ctx context.Context, token string) (*models.CoupleRelationship, error)
	SetInvitation(ctx context.Context, id uuid.UUID, token, email string) error
	Activate(ctx context.Context, id, partnerBID uuid.UUID) error
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a couples service.
// Repo factories receive the active transaction, or nil for plain reads.
type ServiceParams struct {
	TxRunner             txRunner
	RelationshipsFactory func(tx *gorm.DB) relationshipRepository
	UsersFactory         func(tx *gorm.DB) userRepository
	Outbox               outboxEmitter
	Invites              config.InviteConfig
	Password             config.PasswordConfig
}

type service struct {
	tx            txRunner
	relationships func(tx *gorm.DB) relationshipRepository
	users         func(tx *gorm.DB) userRepository
	outbox        outboxEmitter
	invites       config.InviteConfig
	password      config.PasswordConfig
}

// NewService constructs a pairing service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.RelationshipsFactory == nil {
		return nil, fmt.Errorf("relationships factory is required")
	}
	if params.UsersFactory == nil {
		return nil, fmt.Errorf("users factory is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{
		tx:            params.TxRunner,
		relationships: params.RelationshipsFactory,
		users:         params.UsersFactory,
		outbox:        params.Outbox,
		invites:       params.Invites,
		password:      params.Password,
	}, nil
}

// DefaultRelationshipsFactory binds relationship repositories to the active
// transaction, falling back to the base connection for plain reads.
func DefaultRelationshipsFactory(db *gorm.DB) func(tx *gorm.DB) relationshipRepository {
	return func(tx *gorm.DB) relationshipRepository {
		if tx == nil {
			return NewRepository(db)
		}
		return NewRepository(tx)
	}
}

// DefaultUsersFactory exposes user lookups on the same transaction semantics.
func DefaultUsersFactory(db *gorm.DB) func(tx *gorm.DB) userRepository {
	return func(tx *gorm.DB) userRepository {
		if tx == nil {
			return users.NewRepository(db)
		}
		return users.NewRepository(tx)
	}
}

type invitedPayload struct {
	CoupleID     uuid.UUID `json:"couple_id"`
	InvitedEmail string    `json:"invited_email"`
}

type activatedPayload struct {
	CoupleID   uuid.UUID `json:"couple_id"`
	PartnerAID uuid.UUID `json:"partner_a_id"`
	PartnerBID uuid.UUID `json:"partner_b_id"`
}

// EnsureRelationship returns the user's relationship, creating a pending one
// when none exists yet. Safe to call repeatedly.
func (s *service) EnsureRelationship(ctx context.Context, userID uuid.UUID) (*RelationshipDTO, error) {
	rel, err := s.relationships(nil).FindByUser(ctx, userID)
	if err == nil {
		return s.toDTO(rel), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup relationship")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, createErr := s.relationships(tx).Create(ctx, userID)
		if createErr != nil {
			return createErr
		}
		rel = created
		return nil
	})
	if err != nil {
		// Lost a create race: the unique index on partner_a_id caught a
		// concurrent EnsureRelationship for the same user.
		if pkgdb.IsUniqueViolation(err, "idx_couple_partner_a") {
			existing, findErr := s.relationships(nil).FindByUser(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "refetch relationship")
			}
			return s.toDTO(existing), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create relationship")
	}
	return s.toDTO(rel), nil
}

// GetRelationship returns the user's relationship or a not-found error.
func (s *service) GetRelationship(ctx context.Context, userID uuid.UUID) (*RelationshipDTO, error) {
	rel, err := s.relationships(nil).FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "relationship not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup relationship")
	}
	return s.toDTO(rel), nil
}

// InvitePartner issues a single-use invitation token for the user's pending
// relationship, creating the relationship first when needed. Re-inviting
// overwrites the previous token.
func (s *service) InvitePartner(ctx context.Context, userID uuid.UUID, req InvitePartnerRequest) (*RelationshipDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	var result *models.CoupleRelationship
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.relationships(tx)

		rel, err := repo.FindByUserForUpdate(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup relationship")
			}
			rel, err = repo.Create(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create relationship")
			}
		}

		if rel.Status == enums.CoupleStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "relationship is already active")
		}

		token, err := NewInvitationToken()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
		}
		if err := repo.SetInvitation(ctx, rel.ID, token, email); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store invitation")
		}
		rel.InvitationToken = &token
		rel.InvitationEmail = &email

		actor := &outbox.ActorRef{UserID: userID, CoupleID: &rel.ID}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCoupleInvited,
			AggregateType: enums.AggregateCoupleRelationship,
			AggregateID:   rel.ID,
			Actor:         actor,
			Data:          invitedPayload{CoupleID: rel.ID, InvitedEmail: email},
			Version:       1,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record invitation event")
		}

		result = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(result), nil
}

// ValidateToken previews an invitation without consuming it. Unknown and
// already-consumed tokens are indistinguishable to the caller.
func (s *service) ValidateToken(ctx context.Context, token string) (*InvitationPreview, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidToken, "invitation token is invalid")
	}

	rel, err := s.relationships(nil).FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidToken, "invitation token is invalid")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup invitation")
	}
	if rel.Status != enums.CoupleStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidToken, "invitation token is invalid")
	}

	inviter, err := s.users(nil).FindByID(ctx, rel.PartnerAID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup inviter")
	}

	return &InvitationPreview{
		CoupleID:     rel.ID,
		InviterName:  inviter.DisplayName,
		InviterEmail: inviter.Email,
		InvitedEmail: rel.InvitationEmail,
	}, nil
}

// AcceptInvitation consumes the token, creates the invitee's account, and
// activates the relationship in one transaction. The invitation row is locked
// first, so two concurrent accepts of the same token serialize and the loser
// sees the consumed state.
func (s *service) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*AcceptResult, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidToken, "invitation token is invalid")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	minLength := s.password.MinLength
	if minLength <= 0 {
		minLength = fallbackMinPasswordLength
	}
	if len(req.Password) < minLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minLength))
	}

	passwordHash, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var result *AcceptResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.relationships(tx)
		userRepo := s.users(tx)

		rel, err := repo.FindByTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeInvalidToken, "invitation token is invalid")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup invitation")
		}
		if rel.Status == enums.CoupleStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "relationship is already active")
		}

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  displayName,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if err := repo.Activate(ctx, rel.ID, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate relationship")
		}
		rel.PartnerBID = &user.ID
		rel.Status = enums.CoupleStatusActive
		rel.InvitationToken = nil

		actor := &outbox.ActorRef{UserID: user.ID, CoupleID: &rel.ID}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCoupleActivated,
			AggregateType: enums.AggregateCoupleRelationship,
			AggregateID:   rel.ID,
			Actor:         actor,
			Data: activatedPayload{
				CoupleID:   rel.ID,
				PartnerAID: rel.PartnerAID,
				PartnerBID: user.ID,
			},
			Version: 1,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record activation event")
		}

		result = &AcceptResult{
			User:         users.FromModel(user),
			Relationship: s.toDTO(rel),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPartnerProfile returns the other partner's profile for an active relationship.
func (s *service) GetPartnerProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	rel, err := s.relationships(nil).FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "relationship not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup relationship")
	}
	if rel.Status != enums.CoupleStatusActive || rel.PartnerBID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}

	partnerID := rel.PartnerAID
	if partnerID == userID {
		partnerID = *rel.PartnerBID
	}

	partner, err := s.users(nil).FindByID(ctx, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup partner")
	}
	return users.FromModel(partner), nil
}

func (s *service) toDTO(rel *models.CoupleRelationship) *RelationshipDTO {
	var inviteURL *string
	if rel != nil && rel.Status == enums.CoupleStatusPending && rel.InvitationToken != nil {
		u := s.inviteURL(*rel.InvitationToken)
		inviteURL = &u
	}
	return fromModel(rel, inviteURL)
}

func (s *service) inviteURL(token string) string {
	origin := strings.TrimRight(s.invites.PublicOrigin, "/")
	return fmt.Sprintf("%s/invite/%s", origin, token)
}

// NewInvitationToken returns a URL-safe random token.
func NewInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
