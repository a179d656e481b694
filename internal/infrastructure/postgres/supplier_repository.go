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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create inserta el proveedor y completa su ID.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO suppliers (name, active) VALUES ($1, $2) RETURNING id`,
		s.Name, s.Active,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	var s entity.Supplier
	err := pgxscan.Get(ctx, r.q, &s, `SELECT id, name, active FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx, `UPDATE suppliers SET name = $2, active = $3 WHERE id = $1`, s.ID, s.Name, s.Active)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, f repository.SupplierFilter, opts repository.ListOptions) ([]*entity.Supplier, int, error) {
	q := psql.Select("id", "name", "active").From("suppliers")
	if f.Name != "" {
		q = q.Where(squirrel.ILike{"name": contains(f.Name)})
	}
	if f.Active != nil {
		q = q.Where(squirrel.Eq{"active": *f.Active})
	}

	total, err := count(ctx, r.q, q)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := page(q.OrderBy(orderBy(opts.Sort, "id ASC")...), opts).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list suppliers: %w", err)
	}
	var out []*entity.Supplier
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	return out, total, nil
}
