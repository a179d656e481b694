package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/ports"
	"github.com/guilhermesenci/stock-control/internal/application/usecase"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/guilhermesenci/stock-control/pkg/jwt"
	"github.com/guilhermesenci/stock-control/pkg/password"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y perfil de inventario.
type AuthUseCase struct {
	txRunner    ports.IdentityTxRunner
	accountRepo repository.AccountRepository
	userRepo    repository.UserRepository
	hasher      ports.PasswordHasher
	jwtCfg      JWTConfig
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	txRunner ports.IdentityTxRunner,
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	hasher ports.PasswordHasher,
	jwtCfg JWTConfig,
) *AuthUseCase {
	return &AuthUseCase{
		txRunner:    txRunner,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		hasher:      hasher,
		jwtCfg:      jwtCfg,
		now:         time.Now,
	}
}

// Register crea la cuenta y su perfil de inventario en una sola transacción.
// Devuelve ErrPasswordMismatch si las contraseñas no coinciden y ErrEmailAlreadyExists o
// ErrDuplicate si el email o el username ya existen.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.MeResponse, error) {
	if in.Password != in.Password2 {
		return nil, domain.ErrPasswordMismatch
	}
	if err := usecase.ValidatePermissions(in.Permissions); err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	acc := &entity.Account{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		DateJoined:   uc.now(),
	}

	var user *entity.User
	err = uc.txRunner.RunIdentity(ctx, func(accountRepo repository.AccountRepository, userRepo repository.UserRepository) error {
		existing, err := accountRepo.GetByEmail(ctx, acc.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		existing, err = accountRepo.GetByUsername(ctx, acc.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("username %q: %w", acc.Username, domain.ErrDuplicate)
		}
		if err := accountRepo.Create(ctx, acc); err != nil {
			return err
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = acc.FullName()
		}
		user = &entity.User{Name: name, AccountID: &acc.ID, Permissions: in.Permissions}
		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{Account: toAccountResponse(acc), User: usecase.ToUserResponse(user, acc)}, nil
}

// Login verifica credenciales (email o username), genera el JWT y devuelve token + cuenta.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	var (
		acc *entity.Account
		err error
	)
	switch {
	case strings.TrimSpace(in.Email) != "":
		acc, err = uc.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	case strings.TrimSpace(in.Username) != "":
		acc, err = uc.accountRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	default:
		return nil, fmt.Errorf("%w: email o username es obligatorio", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.hasher.Compare(acc.PasswordHash, in.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !acc.IsActive {
		return nil, domain.ErrForbidden
	}

	user, err := uc.userRepo.GetByAccountID(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	token, err := uc.issue(acc, user)
	if err != nil {
		return nil, err
	}
	out := &dto.LoginResponse{Token: token, Account: toAccountResponse(acc)}
	if user != nil {
		out.User = usecase.ToUserResponse(user, acc)
	}
	return out, nil
}

// Me datos de la cuenta autenticada y de su perfil, si existe.
func (uc *AuthUseCase) Me(ctx context.Context, accountID int64) (*dto.MeResponse, error) {
	acc, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrUserNotFound
	}
	user, err := uc.userRepo.GetByAccountID(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.MeResponse{Account: toAccountResponse(acc)}
	if user != nil {
		out.User = usecase.ToUserResponse(user, acc)
	}
	return out, nil
}

// InventoryProfile devuelve el perfil de inventario de la cuenta y lo crea si no existe.
// Los movimientos se registran a nombre de este perfil.
func (uc *AuthUseCase) InventoryProfile(ctx context.Context, accountID int64) (*dto.UserResponse, error) {
	var out *dto.UserResponse
	err := uc.txRunner.RunIdentity(ctx, func(accountRepo repository.AccountRepository, userRepo repository.UserRepository) error {
		acc, err := accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrUserNotFound
		}
		user, err := userRepo.GetByAccountID(ctx, acc.ID)
		if err != nil {
			return err
		}
		if user == nil {
			user = &entity.User{Name: acc.FullName(), AccountID: &acc.ID}
			if err := userRepo.Create(ctx, user); err != nil {
				return err
			}
		}
		out = usecase.ToUserResponse(user, acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *AuthUseCase) issue(acc *entity.Account, user *entity.User) (string, error) {
	sub := jwt.Subject{AccountID: acc.ID, Superuser: acc.IsSuperuser}
	if user != nil {
		sub.UserID = user.ID
		sub.Permissions = user.Permissions
	}
	return jwt.Generate(uc.jwtCfg.Secret, sub, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}

func toAccountResponse(a *entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		IsActive:    a.IsActive,
		IsStaff:     a.IsStaff,
		IsSuperuser: a.IsSuperuser,
		DateJoined:  a.DateJoined,
	}
}
