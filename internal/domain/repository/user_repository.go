package repository

import (
	"context"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
)

// AccountRepository define el puerto de persistencia para cuentas de autenticación.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
	Delete(ctx context.Context, id int64) error
}

// UserFilter filtros de perfiles de inventario.
type UserFilter struct {
	Name string
}

// UserRepository define el puerto de persistencia para perfiles de inventario.
// El ID lo asigna una secuencia del store.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByAccountID(ctx context.Context, accountID int64) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter UserFilter, opts ListOptions) ([]*entity.User, int, error)
}
