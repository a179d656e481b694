package ports

import (
	"context"

	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

// IdentityTxRunner ejecuta fn en una transacción con los repositorios de cuentas y perfiles.
// Registro y edición de usuarios tocan ambas tablas y deben confirmarse juntas.
type IdentityTxRunner interface {
	RunIdentity(ctx context.Context, fn func(
		accountRepo repository.AccountRepository,
		userRepo repository.UserRepository,
	) error) error
}

// PasswordHasher hashea y verifica contraseñas.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
