package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coupleshub/backend/api/middleware"
	"github.com/coupleshub/backend/api/responses"
	"github.com/coupleshub/backend/api/validators"
	"github.com/coupleshub/backend/internal/auth"
	"github.com/coupleshub/backend/internal/couples"
	"github.com/coupleshub/backend/internal/users"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/logger"
)

// CoupleGet returns the caller's relationship, creating a pending one when
// none exists yet.
func CoupleGet(svc couples.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		rel, err := svc.EnsureRelationship(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rel)
	}
}

// CoupleInvite issues (or rotates) the shareable invitation link.
func CoupleInvite(svc couples.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body couples.InvitePartnerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		rel, err := svc.InvitePartner(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rel)
	}
}

// CouplePartner returns the partner's public profile for an active relationship.
func CouplePartner(svc couples.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		profile, err := svc.GetPartnerProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// InvitePreview validates an invitation token anonymously. Unknown and
// consumed tokens are indistinguishable on this surface.
func InvitePreview(svc couples.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}

		preview, err := svc.ValidateToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

type inviteAcceptResponse struct {
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
	User         *users.UserDTO           `json:"user"`
	CoupleID     *uuid.UUID               `json:"couple_id,omitempty"`
	Relationship *couples.RelationshipDTO `json:"relationship"`
}

// InviteAccept creates the invitee's account, pairs it with the inviter in a
// single transaction, and logs the new user in.
func InviteAccept(svc couples.Service, authSvc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}

		var body couples.AcceptInvitationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Token = token

		result, err := svc.AcceptInvitation(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := authSvc.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, inviteAcceptResponse{
			AccessToken:  login.AccessToken,
			RefreshToken: login.RefreshToken,
			User:         login.User,
			CoupleID:     login.CoupleID,
			Relationship: result.Relationship,
		})
	}
}
