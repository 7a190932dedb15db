package couples

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/internal/users"
	"github.com/coupleshub/backend/pkg/config"
	pkgmodels "github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/outbox"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRelationshipRepo struct {
	byID      map[uuid.UUID]*pkgmodels.CoupleRelationship
	createErr error
	hideFinds int
}

func newStubRelationshipRepo() *stubRelationshipRepo {
	return &stubRelationshipRepo{byID: map[uuid.UUID]*pkgmodels.CoupleRelationship{}}
}

func (s *stubRelationshipRepo) Create(ctx context.Context, partnerAID uuid.UUID) (*pkgmodels.CoupleRelationship, error) {
	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		return nil, err
	}
	rel := &pkgmodels.CoupleRelationship{
		ID:         uuid.New(),
		PartnerAID: partnerAID,
		Status:     enums.CoupleStatusPending,
	}
	s.byID[rel.ID] = rel
	return rel, nil
}

func (s *stubRelationshipRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*pkgmodels.CoupleRelationship, error) {
	if s.hideFinds > 0 {
		s.hideFinds--
		return nil, gorm.ErrRecordNotFound
	}
	for _, rel := range s.byID {
		if rel.PartnerAID == userID || (rel.PartnerBID != nil && *rel.PartnerBID == userID) {
			return rel, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRelationshipRepo) FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*pkgmodels.CoupleRelationship, error) {
	return s.FindByUser(ctx, userID)
}

func (s *stubRelationshipRepo) FindByID(ctx context.Context, id uuid.UUID) (*pkgmodels.CoupleRelationship, error) {
	if rel, ok := s.byID[id]; ok {
		return rel, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRelationshipRepo) FindByToken(ctx context.Context, token string) (*pkgmodels.CoupleRelationship, error) {
	for _, rel := range s.byID {
		if rel.InvitationToken != nil && *rel.InvitationToken == token {
			return rel, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRelationshipRepo) FindByTokenForUpdate(ctx context.Context, token string) (*pkgmodels.CoupleRelationship, error) {
	return s.FindByToken(ctx, token)
}

func (s *stubRelationshipRepo) SetInvitation(ctx context.Context, id uuid.UUID, token, email string) error {
	rel, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rel.InvitationToken = &token
	rel.InvitationEmail = &email
	return nil
}

func (s *stubRelationshipRepo) Activate(ctx context.Context, id, partnerBID uuid.UUID) error {
	rel, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rel.PartnerBID = &partnerBID
	rel.Status = enums.CoupleStatusActive
	rel.InvitationToken = nil
	return nil
}

type stubUserRepo struct {
	byID map[uuid.UUID]*pkgmodels.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*pkgmodels.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	u := &pkgmodels.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		DisplayName:  dto.DisplayName,
		IsActive:     true,
	}
	s.byID[u.ID] = u
	return u, nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type couplesTestSetup struct {
	service Service
	rels    *stubRelationshipRepo
	users   *stubUserRepo
	outbox  *stubOutbox
}

func newCouplesTestSetup(t *testing.T) *couplesTestSetup {
	t.Helper()
	rels := newStubRelationshipRepo()
	userRepo := &stubUserRepo{byID: map[uuid.UUID]*pkgmodels.User{}}
	ob := &stubOutbox{}
	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		RelationshipsFactory: func(tx *gorm.DB) relationshipRepository {
			return rels
		},
		UsersFactory: func(tx *gorm.DB) userRepository {
			return userRepo
		},
		Outbox:  ob,
		Invites: config.InviteConfig{PublicOrigin: "https://app.example.com"},
	})
	if err != nil {
		t.Fatalf("new couples service: %v", err)
	}
	return &couplesTestSetup{service: svc, rels: rels, users: userRepo, outbox: ob}
}

func (s *couplesTestSetup) addUser(t *testing.T, name, email string) *pkgmodels.User {
	t.Helper()
	u := &pkgmodels.User{ID: uuid.New(), Email: email, DisplayName: name, IsActive: true}
	s.users.byID[u.ID] = u
	return u
}

func errorCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	return coded.Code()
}

func TestEnsureRelationshipIsIdempotent(t *testing.T) {
	setup := newCouplesTestSetup(t)
	user := setup.addUser(t, "Alex", "alex@example.com")

	first, err := setup.service.EnsureRelationship(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ensure relationship: %v", err)
	}
	if first.Status != enums.CoupleStatusPending {
		t.Fatalf("expected pending status, got %s", first.Status)
	}

	second, err := setup.service.EnsureRelationship(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ensure relationship again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same relationship, got %s and %s", first.ID, second.ID)
	}
	if len(setup.rels.byID) != 1 {
		t.Fatalf("expected a single relationship, got %d", len(setup.rels.byID))
	}
}

func TestInvitePartnerIssuesTokenAndInviteURL(t *testing.T) {
	setup := newCouplesTestSetup(t)
	user := setup.addUser(t, "Alex", "alex@example.com")

	dto, err := setup.service.InvitePartner(context.Background(), user.ID, InvitePartnerRequest{Email: "Sam@Example.com"})
	if err != nil {
		t.Fatalf("invite partner: %v", err)
	}
	if dto.InvitationEmail == nil || *dto.InvitationEmail != "sam@example.com" {
		t.Fatalf("expected normalized invitee email, got %v", dto.InvitationEmail)
	}
	if dto.InviteURL == nil {
		t.Fatalf("expected invite url")
	}
	rel := setup.rels.byID[dto.ID]
	if rel.InvitationToken == nil {
		t.Fatalf("expected token stored")
	}
	want := "https://app.example.com/invite/" + *rel.InvitationToken
	if *dto.InviteURL != want {
		t.Fatalf("invite url mismatch: got %s want %s", *dto.InviteURL, want)
	}

	if len(setup.outbox.events) != 1 || setup.outbox.events[0].EventType != enums.EventCoupleInvited {
		t.Fatalf("expected couple.invited event, got %+v", setup.outbox.events)
	}
}

func TestReInviteOverwritesToken(t *testing.T) {
	setup := newCouplesTestSetup(t)
	user := setup.addUser(t, "Alex", "alex@example.com")

	first, err := setup.service.InvitePartner(context.Background(), user.ID, InvitePartnerRequest{Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("first invite: %v", err)
	}
	firstToken := *setup.rels.byID[first.ID].InvitationToken

	_, err = setup.service.InvitePartner(context.Background(), user.ID, InvitePartnerRequest{Email: "pat@example.com"})
	if err != nil {
		t.Fatalf("second invite: %v", err)
	}
	secondToken := *setup.rels.byID[first.ID].InvitationToken

	if firstToken == secondToken {
		t.Fatalf("expected re-invite to rotate the token")
	}
	if _, err := setup.service.ValidateToken(context.Background(), firstToken); errorCode(t, err) != pkgerrors.CodeInvalidToken {
		t.Fatalf("expected stale token to be invalid")
	}
}

func TestValidateTokenReturnsInviterPreview(t *testing.T) {
	setup := newCouplesTestSetup(t)
	inviter := setup.addUser(t, "Alex", "alex@example.com")

	dto, err := setup.service.InvitePartner(context.Background(), inviter.ID, InvitePartnerRequest{Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token := *setup.rels.byID[dto.ID].InvitationToken

	preview, err := setup.service.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if preview.InviterName != "Alex" || preview.InviterEmail != "alex@example.com" {
		t.Fatalf("unexpected preview: %+v", preview)
	}
}

func TestAcceptInvitationSignsUpInviteeAndConsumesToken(t *testing.T) {
	setup := newCouplesTestSetup(t)
	inviter := setup.addUser(t, "Alex", "alex@example.com")

	dto, err := setup.service.InvitePartner(context.Background(), inviter.ID, InvitePartnerRequest{Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token := *setup.rels.byID[dto.ID].InvitationToken

	result, err := setup.service.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token:       token,
		Email:       "Sam@Example.com",
		Password:    "Secret123!",
		DisplayName: "Sam",
	})
	if err != nil {
		t.Fatalf("accept invitation: %v", err)
	}
	if result.User == nil || result.User.Email != "sam@example.com" {
		t.Fatalf("expected invitee account with normalized email, got %+v", result.User)
	}
	rel := result.Relationship
	if rel.Status != enums.CoupleStatusActive {
		t.Fatalf("expected active, got %s", rel.Status)
	}
	if rel.PartnerBID == nil || *rel.PartnerBID != result.User.ID {
		t.Fatalf("expected new user as partner b")
	}
	if setup.rels.byID[rel.ID].InvitationToken != nil {
		t.Fatalf("expected token consumed")
	}

	// second accept of the same token fails closed
	_, err = setup.service.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token:       token,
		Email:       "pat@example.com",
		Password:    "Secret123!",
		DisplayName: "Pat",
	})
	if errorCode(t, err) != pkgerrors.CodeInvalidToken {
		t.Fatalf("expected consumed token to be invalid")
	}

	last := setup.outbox.events[len(setup.outbox.events)-1]
	if last.EventType != enums.EventCoupleActivated {
		t.Fatalf("expected couple.activated event, got %s", last.EventType)
	}
}

func TestAcceptInvitationRejectsRegisteredEmail(t *testing.T) {
	setup := newCouplesTestSetup(t)
	inviter := setup.addUser(t, "Alex", "alex@example.com")

	dto, err := setup.service.InvitePartner(context.Background(), inviter.ID, InvitePartnerRequest{Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token := *setup.rels.byID[dto.ID].InvitationToken

	// The inviter cannot consume their own link either; their email is taken.
	_, err = setup.service.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token:       token,
		Email:       inviter.Email,
		Password:    "Secret123!",
		DisplayName: "Alex",
	})
	if errorCode(t, err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for registered email")
	}
	if setup.rels.byID[dto.ID].Status != enums.CoupleStatusPending {
		t.Fatalf("expected relationship untouched after rejected accept")
	}
}

func TestAcceptInvitationRejectsWeakPassword(t *testing.T) {
	setup := newCouplesTestSetup(t)

	_, err := setup.service.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token:       "some-token",
		Email:       "sam@example.com",
		Password:    "short",
		DisplayName: "Sam",
	})
	if errorCode(t, err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for weak password")
	}
}

func TestAcceptInvitationAlreadyActiveIsStateConflict(t *testing.T) {
	setup := newCouplesTestSetup(t)
	inviter := setup.addUser(t, "Alex", "alex@example.com")
	partnerB := uuid.New()
	token := "lingering-token"

	// An activated row that somehow kept its token still refuses accepts.
	rel := &pkgmodels.CoupleRelationship{
		ID:              uuid.New(),
		PartnerAID:      inviter.ID,
		PartnerBID:      &partnerB,
		Status:          enums.CoupleStatusActive,
		InvitationToken: &token,
	}
	setup.rels.byID[rel.ID] = rel

	_, err := setup.service.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token:       token,
		Email:       "sam@example.com",
		Password:    "Secret123!",
		DisplayName: "Sam",
	})
	if errorCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for active relationship")
	}
}

func TestEnsureRelationshipRecoversFromCreateRace(t *testing.T) {
	setup := newCouplesTestSetup(t)
	user := setup.addUser(t, "Alex", "alex@example.com")

	// A concurrent request wins the insert between our lookup and create.
	winner, err := setup.rels.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("seed winner: %v", err)
	}
	setup.rels.hideFinds = 1
	setup.rels.createErr = fmt.Errorf(`duplicate key value violates unique constraint "idx_couple_partner_a"`)

	got, err := setup.service.EnsureRelationship(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ensure relationship: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected winner relationship %s, got %s", winner.ID, got.ID)
	}
}

func TestGetPartnerProfileReturnsOtherSide(t *testing.T) {
	setup := newCouplesTestSetup(t)
	inviter := setup.addUser(t, "Alex", "alex@example.com")

	dto, err := setup.service.InvitePartner(context.Background(), inviter.ID, InvitePartnerRequest{Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token := *setup.rels.byID[dto.ID].InvitationToken
	result, err := setup.service.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token:       token,
		Email:       "sam@example.com",
		Password:    "Secret123!",
		DisplayName: "Sam",
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	invitee := result.User

	fromInviter, err := setup.service.GetPartnerProfile(context.Background(), inviter.ID)
	if err != nil {
		t.Fatalf("partner profile: %v", err)
	}
	if fromInviter.ID != invitee.ID {
		t.Fatalf("expected invitee profile, got %s", fromInviter.ID)
	}

	fromInvitee, err := setup.service.GetPartnerProfile(context.Background(), invitee.ID)
	if err != nil {
		t.Fatalf("partner profile: %v", err)
	}
	if fromInvitee.ID != inviter.ID {
		t.Fatalf("expected inviter profile, got %s", fromInvitee.ID)
	}
}

func TestGetPartnerProfilePendingIsNotFound(t *testing.T) {
	setup := newCouplesTestSetup(t)
	user := setup.addUser(t, "Alex", "alex@example.com")

	if _, err := setup.service.EnsureRelationship(context.Background(), user.ID); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := setup.service.GetPartnerProfile(context.Background(), user.ID); errorCode(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for pending relationship")
	}
}
