package couples

import (
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/internal/users"
	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
)

// RelationshipDTO is the transport shape for a pairing record. The raw
// invitation token never leaves the service; pending relationships carry a
// shareable invite URL instead.
type RelationshipDTO struct {
	ID              uuid.UUID          `json:"id"`
	PartnerAID      uuid.UUID          `json:"partner_a_id"`
	PartnerBID      *uuid.UUID         `json:"partner_b_id,omitempty"`
	Status          enums.CoupleStatus `json:"status"`
	InvitationEmail *string            `json:"invitation_email,omitempty"`
	InviteURL       *string            `json:"invite_url,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// InvitePartnerRequest is the payload for sending a partner invitation.
type InvitePartnerRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InvitationPreview is what an invitee sees before accepting.
type InvitationPreview struct {
	CoupleID     uuid.UUID `json:"couple_id"`
	InviterName  string    `json:"inviter_name"`
	InviterEmail string    `json:"inviter_email"`
	InvitedEmail *string   `json:"invited_email,omitempty"`
}

// AcceptInvitationRequest carries the token being consumed plus the invitee's
// signup details. The token arrives via the URL, so it carries no validate tag.
type AcceptInvitationRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

// AcceptResult is the outcome of a consumed invitation: the freshly created
// invitee account and the now-active relationship.
type AcceptResult struct {
	User         *users.UserDTO   `json:"user"`
	Relationship *RelationshipDTO `json:"relationship"`
}

func fromModel(m *models.CoupleRelationship, inviteURL *string) *RelationshipDTO {
	if m == nil {
		return nil
	}
	return &RelationshipDTO{
		ID:              m.ID,
		PartnerAID:      m.PartnerAID,
		PartnerBID:      m.PartnerBID,
		Status:          m.Status,
		InvitationEmail: m.InvitationEmail,
		InviteURL:       inviteURL,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
