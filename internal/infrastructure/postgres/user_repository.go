package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

var userColumns = []string{"id", "name", "account_id", "permissions"}

// UserRepo perfiles de inventario sobre PostgreSQL. El ID sale de la secuencia de users.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create inserta el perfil. Una cuenta con perfil ya vinculado devuelve domain.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO users (name, account_id, permissions) VALUES ($1, $2, $3) RETURNING id`,
		u.Name, u.AccountID, permissions(u.Permissions),
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.get(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepo) GetByAccountID(ctx context.Context, accountID int64) (*entity.User, error) {
	return r.get(ctx, squirrel.Eq{"account_id": accountID})
}

func (r *UserRepo) get(ctx context.Context, where squirrel.Eq) (*entity.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user: %w", err)
	}
	var u entity.User
	if err := pgxscan.Get(ctx, r.q, &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE users SET name = $2, account_id = $3, permissions = $4 WHERE id = $1`,
		u.ID, u.Name, u.AccountID, permissions(u.Permissions),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete devuelve domain.ErrConflict si el perfil registró movimientos.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, f repository.UserFilter, opts repository.ListOptions) ([]*entity.User, int, error) {
	q := psql.Select(userColumns...).From("users")
	if f.Name != "" {
		q = q.Where(squirrel.ILike{"name": contains(f.Name)})
	}
	total, err := count(ctx, r.q, q)
	if err != nil {
		return nil, 0, err
	}
	sql, args, err := page(q.OrderBy(orderBy(opts.Sort, "id ASC")...), opts).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users: %w", err)
	}
	var out []*entity.User
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return out, total, nil
}

// permissions evita NULL en la columna NOT NULL.
func permissions(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
