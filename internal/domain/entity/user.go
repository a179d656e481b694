package entity

import (
	"slices"
	"time"
)

// Permisos reconocidos por los middlewares de autorización.
const (
	PermItemsManage        = "items.manage"
	PermSuppliersManage    = "suppliers.manage"
	PermTransactionsManage = "transactions.manage"
	PermUsersManage        = "users.manage"
	PermReportsView        = "reports.view"
)

// Account principal de autenticación (credenciales y banderas de acceso).
type Account struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	IsActive     bool      `db:"is_active"`
	IsStaff      bool      `db:"is_staff"`
	IsSuperuser  bool      `db:"is_superuser"`
	DateJoined   time.Time `db:"date_joined"`
}

// FullName nombre para mostrar; si no hay nombre se usa el username.
func (a *Account) FullName() string {
	name := a.FirstName
	if a.LastName != "" {
		if name != "" {
			name += " "
		}
		name += a.LastName
	}
	if name == "" {
		return a.Username
	}
	return name
}

// User perfil de inventario que registra movimientos. El ID sale de una secuencia del store.
type User struct {
	ID          int64    `db:"id"`
	Name        string   `db:"name"`
	AccountID   *int64   `db:"account_id"`
	Permissions []string `db:"permissions"`
}

// HasPermission indica si el perfil tiene el permiso indicado.
func (u *User) HasPermission(perm string) bool {
	return slices.Contains(u.Permissions, perm)
}
