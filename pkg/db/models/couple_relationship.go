package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
)

// CoupleRelationship is the pairing record linking two user identities.
//
// Invariants enforced here and in migrations:
//   - status = active iff partner_b_id is non-null
//   - a user appears in at most one relationship (partial unique indexes on
//     partner_a_id and partner_b_id)
//   - invitation_token is unique while set and nulled on consumption
//
// Tokens carry no expiry; re-inviting overwrites the previous token, which is
// the only way an unconsumed token is invalidated.
type CoupleRelationship struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerAID      uuid.UUID          `gorm:"column:partner_a_id;type:uuid;not null;uniqueIndex"`
	PartnerBID      *uuid.UUID         `gorm:"column:partner_b_id;type:uuid;uniqueIndex"`
	Status          enums.CoupleStatus `gorm:"column:status;type:text;not null;default:pending"`
	InvitationToken *string            `gorm:"column:invitation_token;type:text;uniqueIndex"`
	InvitationEmail *string            `gorm:"column:invitation_email;type:text"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
