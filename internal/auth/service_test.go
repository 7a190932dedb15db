package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/coupleshub/backend/pkg/auth"
	"github.com/coupleshub/backend/pkg/config"
	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "coupleshub-test",
	ExpirationMinutes: 15,
}

type stubLoginUserRepo struct {
	byEmail   map[string]*models.User
	lastLogin map[uuid.UUID]time.Time
}

func newStubLoginUserRepo() *stubLoginUserRepo {
	return &stubLoginUserRepo{
		byEmail:   map[string]*models.User{},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (s *stubLoginUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLoginUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

type stubCoupleFinder struct {
	byUser map[uuid.UUID]*models.CoupleRelationship
}

func (s *stubCoupleFinder) FindByUser(ctx context.Context, userID uuid.UUID) (*models.CoupleRelationship, error) {
	if rel, ok := s.byUser[userID]; ok {
		return rel, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	accessIDs []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.accessIDs = append(s.accessIDs, accessID)
	return "refresh-" + accessID, nil
}

type loginTestSetup struct {
	service  Service
	users    *stubLoginUserRepo
	couples  *stubCoupleFinder
	sessions *stubSessionManager
}

func newLoginTestSetup(t *testing.T) *loginTestSetup {
	t.Helper()
	userRepo := newStubLoginUserRepo()
	coupleRepo := &stubCoupleFinder{byUser: map[uuid.UUID]*models.CoupleRelationship{}}
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		CoupleRepo:     coupleRepo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &loginTestSetup{service: svc, users: userRepo, couples: coupleRepo, sessions: sessions}
}

func seedUser(t *testing.T, setup *loginTestSetup, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  "Sam",
		PasswordHash: hash,
		IsActive:     true,
	}
	setup.users.byEmail[email] = user
	return user
}

func TestLoginIssuesTokenPairAndRecordsLogin(t *testing.T) {
	setup := newLoginTestSetup(t)
	user := seedUser(t, setup, "sam@example.com", "Secret123!")

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "  Sam@Example.com ",
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", resp)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("expected user profile in response")
	}
	if _, ok := setup.users.lastLogin[user.ID]; !ok {
		t.Fatalf("expected last login recorded")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims user mismatch: %s", claims.UserID)
	}
	if claims.CoupleID != nil {
		t.Fatalf("expected no couple claim for unpaired user")
	}
	if len(setup.sessions.accessIDs) != 1 || claims.ID != setup.sessions.accessIDs[0] {
		t.Fatalf("refresh token not tied to jti")
	}
}

func TestLoginIncludesCoupleClaimWhenPaired(t *testing.T) {
	setup := newLoginTestSetup(t)
	user := seedUser(t, setup, "sam@example.com", "Secret123!")
	rel := &models.CoupleRelationship{
		ID:         uuid.New(),
		PartnerAID: user.ID,
		Status:     enums.CoupleStatusPending,
	}
	setup.couples.byUser[user.ID] = rel

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "sam@example.com",
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.CoupleID == nil || *resp.CoupleID != rel.ID {
		t.Fatalf("expected couple id in response")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.CoupleID == nil || *claims.CoupleID != rel.ID {
		t.Fatalf("expected couple claim, got %v", claims.CoupleID)
	}
}

func TestLoginRejectsBadPasswordAndUnknownEmail(t *testing.T) {
	setup := newLoginTestSetup(t)
	seedUser(t, setup, "sam@example.com", "Secret123!")

	for _, req := range []LoginRequest{
		{Email: "sam@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "Secret123!"},
		{Email: "", Password: "Secret123!"},
	} {
		_, err := setup.service.Login(context.Background(), req)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %+v, got %v", req, err)
		}
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	setup := newLoginTestSetup(t)
	user := seedUser(t, setup, "sam@example.com", "Secret123!")
	user.IsActive = false

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "sam@example.com",
		Password: "Secret123!",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
