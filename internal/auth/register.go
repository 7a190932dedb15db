package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coupleshub/backend/internal/couples"
	"github.com/coupleshub/backend/internal/users"
	"github.com/coupleshub/backend/pkg/config"
	"github.com/coupleshub/backend/pkg/db/models"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/security"
)

const fallbackMinPasswordLength = 8

// RegisterService handles the signup transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerCoupleRepository interface {
	Create(ctx context.Context, partnerAID uuid.UUID) (*models.CoupleRelationship, error)
}

type registerTxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the signup flow.
type RegisterServiceParams struct {
	TxRunner          registerTxRunner
	UserRepoFactory   func(tx *gorm.DB) registerUserRepository
	CoupleRepoFactory func(tx *gorm.DB) registerCoupleRepository
	PasswordConfig    config.PasswordConfig
}

type registerService struct {
	tx          registerTxRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	coupleRepo  func(tx *gorm.DB) registerCoupleRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a signup service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.UserRepoFactory == nil {
		return nil, fmt.Errorf("user repo factory is required")
	}
	if params.CoupleRepoFactory == nil {
		return nil, fmt.Errorf("couple repo factory is required")
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		coupleRepo:  params.CoupleRepoFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// DefaultUserRepoFactory binds user repositories to the active transaction,
// falling back to the base connection for plain reads.
func DefaultUserRepoFactory(db *gorm.DB) func(tx *gorm.DB) registerUserRepository {
	return func(tx *gorm.DB) registerUserRepository {
		if tx == nil {
			return users.NewRepository(db)
		}
		return users.NewRepository(tx)
	}
}

// DefaultCoupleRepoFactory exposes relationship writes on the same semantics.
func DefaultCoupleRepoFactory(db *gorm.DB) func(tx *gorm.DB) registerCoupleRepository {
	return func(tx *gorm.DB) registerCoupleRepository {
		if tx == nil {
			return couples.NewRepository(db)
		}
		return couples.NewRepository(tx)
	}
}

// Register creates the user and their pending relationship in one transaction,
// so a signup that half-fails leaves nothing behind.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	minLength := s.passwordCfg.MinLength
	if minLength <= 0 {
		minLength = fallbackMinPasswordLength
	}
	if len(req.Password) < minLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minLength))
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var result *RegisterResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)
		coupleRepo := s.coupleRepo(tx)

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

		rel, err := coupleRepo.Create(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create relationship")
		}

		result = &RegisterResult{
			User:     users.FromModel(user),
			CoupleID: rel.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
