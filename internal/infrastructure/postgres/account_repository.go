package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountSelect = `
	SELECT id, username, email, password_hash, first_name, last_name,
	       is_active, is_staff, is_superuser, date_joined
	FROM accounts`

// AccountRepo cuentas de autenticación sobre PostgreSQL.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// Create inserta la cuenta. Email repetido devuelve domain.ErrEmailAlreadyExists y
// username repetido domain.ErrDuplicate.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, first_name, last_name, is_active, is_staff, is_superuser, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName,
		a.IsActive, a.IsStaff, a.IsSuperuser, a.DateJoined,
	).Scan(&a.ID)
	if err != nil {
		return accountError("insert account", err)
	}
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	return r.get(ctx, accountSelect+` WHERE id = $1`, id)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.get(ctx, accountSelect+` WHERE lower(email) = lower($1)`, email)
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return r.get(ctx, accountSelect+` WHERE lower(username) = lower($1)`, username)
}

func (r *AccountRepo) get(ctx context.Context, sql string, args ...any) (*entity.Account, error) {
	var a entity.Account
	if err := pgxscan.Get(ctx, r.q, &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE accounts
		SET username = $2, email = $3, password_hash = $4, first_name = $5, last_name = $6,
		    is_active = $7, is_staff = $8, is_superuser = $9
		WHERE id = $1`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName,
		a.IsActive, a.IsStaff, a.IsSuperuser,
	)
	if err != nil {
		return accountError("update account", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la cuenta; el perfil de inventario queda desvinculado (ON DELETE SET NULL).
func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func accountError(op string, err error) error {
	if isUniqueViolation(err) {
		if constraintOf(err) == "accounts_email_key" {
			return domain.ErrEmailAlreadyExists
		}
		return domain.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
