package couples

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
)

// Repository exposes pairing persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a fresh pending relationship owned by partnerA.
func (r *Repository) Create(ctx context.Context, partnerAID uuid.UUID) (*models.CoupleRelationship, error) {
	rel := &models.CoupleRelationship{
		PartnerAID: partnerAID,
		Status:     enums.CoupleStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(rel).Error; err != nil {
		return nil, err
	}
	return rel, nil
}

// FindByUser returns the relationship the user belongs to, on either side.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.CoupleRelationship, error) {
	var rel models.CoupleRelationship
	err := r.db.WithContext(ctx).
		Where("partner_a_id = ? OR partner_b_id = ?", userID, userID).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// FindByUserForUpdate is FindByUser with a row lock, for use inside a transaction.
func (r *Repository) FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.CoupleRelationship, error) {
	var rel models.CoupleRelationship
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("partner_a_id = ? OR partner_b_id = ?", userID, userID).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// FindByID loads a relationship by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CoupleRelationship, error) {
	var rel models.CoupleRelationship
	if err := r.db.WithContext(ctx).First(&rel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

// FindByToken returns the relationship holding the given invitation token.
func (r *Repository) FindByToken(ctx context.Context, token string) (*models.CoupleRelationship, error) {
	var rel models.CoupleRelationship
	err := r.db.WithContext(ctx).
		Where("invitation_token = ?", token).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// FindByTokenForUpdate locks the invitation row so concurrent accepts serialize.
func (r *Repository) FindByTokenForUpdate(ctx context.Context, token string) (*models.CoupleRelationship, error) {
	var rel models.CoupleRelationship
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("invitation_token = ?", token).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// SetInvitation stores a fresh token and invitee email, overwriting any
// previous unconsumed invitation.
func (r *Repository) SetInvitation(ctx context.Context, id uuid.UUID, token, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.CoupleRelationship{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"invitation_token": token,
			"invitation_email": email,
		}).Error
}

// Activate pairs partnerB into the relationship and consumes the token.
func (r *Repository) Activate(ctx context.Context, id, partnerBID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CoupleRelationship{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"partner_b_id":     partnerBID,
			"status":           enums.CoupleStatusActive,
			"invitation_token": nil,
		}).Error
}
