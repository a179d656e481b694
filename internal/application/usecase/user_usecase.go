package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/application/ports"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var userSort = listing.NewRegistry(
	listing.Field[*entity.User]{Name: "id", Column: "id"},
	listing.Field[*entity.User]{Name: "name", Column: "lower(name)"},
)

// KnownPermissions permisos asignables a un perfil.
var KnownPermissions = []string{
	entity.PermItemsManage,
	entity.PermSuppliersManage,
	entity.PermTransactionsManage,
	entity.PermUsersManage,
	entity.PermReportsView,
}

// UserUseCase administración de perfiles de inventario y de su cuenta vinculada.
type UserUseCase struct {
	txRunner    ports.IdentityTxRunner
	userRepo    repository.UserRepository
	accountRepo repository.AccountRepository
	hasher      ports.PasswordHasher
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(
	txRunner ports.IdentityTxRunner,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	hasher ports.PasswordHasher,
) *UserUseCase {
	return &UserUseCase{txRunner: txRunner, userRepo: userRepo, accountRepo: accountRepo, hasher: hasher}
}

func (uc *UserUseCase) Get(ctx context.Context, id int64) (*dto.UserResponse, error) {
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("usuario %d: %w", id, domain.ErrUserNotFound)
	}
	return uc.response(ctx, uc.accountRepo, u)
}

func (uc *UserUseCase) List(ctx context.Context, in dto.UserListRequest) (*dto.UserListResponse, error) {
	sort, err := userSort.Parse(in.Ordering)
	if err != nil {
		return nil, err
	}
	page := in.PageOf()
	list, total, err := uc.userRepo.List(ctx, repository.UserFilter{Name: in.Name},
		repository.ListOptions{Sort: sort, Limit: page.Size, Offset: page.Offset()})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		r, err := uc.response(ctx, uc.accountRepo, u)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	return &dto.UserListResponse{Items: items, Page: dto.NewPageResponse(page, total)}, nil
}

// Update edita el perfil y, si hay cuenta vinculada, email, estado y contraseña.
func (uc *UserUseCase) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if in.Permissions != nil {
		if err := ValidatePermissions(in.Permissions); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		if in.Password2 == nil || *in.Password != *in.Password2 {
			return nil, domain.ErrPasswordMismatch
		}
	}

	var out *dto.UserResponse
	err := uc.txRunner.RunIdentity(ctx, func(accountRepo repository.AccountRepository, userRepo repository.UserRepository) error {
		u, err := userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("usuario %d: %w", id, domain.ErrUserNotFound)
		}
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Permissions != nil {
			u.Permissions = normalizePermissions(in.Permissions)
		}
		if err := userRepo.Update(ctx, u); err != nil {
			return err
		}

		accountChange := in.Email != nil || in.IsActive != nil || in.Password != nil
		if accountChange {
			if u.AccountID == nil {
				return fmt.Errorf("%w: el usuario no tiene cuenta vinculada", domain.ErrInvalidInput)
			}
			acc, err := accountRepo.GetByID(ctx, *u.AccountID)
			if err != nil {
				return err
			}
			if acc == nil {
				return fmt.Errorf("cuenta %d: %w", *u.AccountID, domain.ErrNotFound)
			}
			if in.Email != nil {
				acc.Email = strings.ToLower(strings.TrimSpace(*in.Email))
			}
			if in.IsActive != nil {
				acc.IsActive = *in.IsActive
			}
			if in.Password != nil {
				hash, err := uc.hasher.Hash(*in.Password)
				if err != nil {
					return err
				}
				acc.PasswordHash = hash
			}
			if err := accountRepo.Update(ctx, acc); err != nil {
				return err
			}
		}
		out, err = uc.response(ctx, accountRepo, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra el perfil; domain.ErrConflict si registró movimientos. La cuenta se conserva.
func (uc *UserUseCase) Delete(ctx context.Context, id int64) error {
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("usuario %d: %w", id, domain.ErrUserNotFound)
	}
	return uc.userRepo.Delete(ctx, id)
}

func (uc *UserUseCase) response(ctx context.Context, accountRepo repository.AccountRepository, u *entity.User) (*dto.UserResponse, error) {
	r := ToUserResponse(u, nil)
	if u.AccountID == nil {
		return r, nil
	}
	acc, err := accountRepo.GetByID(ctx, *u.AccountID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(u, acc), nil
}

// ValidatePermissions rechaza permisos desconocidos.
func ValidatePermissions(perms []string) error {
	for _, p := range perms {
		if !slices.Contains(KnownPermissions, strings.TrimSpace(p)) {
			return fmt.Errorf("%w: permiso desconocido %q", domain.ErrInvalidInput, p)
		}
	}
	return nil
}

func normalizePermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, strings.TrimSpace(p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ToUserResponse arma la salida del perfil con los datos de su cuenta, si la hay.
func ToUserResponse(u *entity.User, acc *entity.Account) *dto.UserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	r := &dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		AccountID:   u.AccountID,
		Permissions: perms,
	}
	if acc != nil {
		r.Username = acc.Username
		r.Email = acc.Email
	}
	return r
}
