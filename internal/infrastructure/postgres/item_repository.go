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

var _ repository.ItemRepository = (*ItemRepo)(nil)

var itemColumns = []string{"sku", "description", "unit_measure", "active"}

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	sql, args, err := psql.Insert("items").
		Columns(itemColumns...).
		Values(item.SKU, item.Description, item.UnitMeasure, item.Active).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert item: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetBySKU devuelve (nil, nil) si no existe.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	sql, args, err := psql.Select(itemColumns...).From("items").Where(squirrel.Eq{"sku": sku}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item: %w", err)
	}
	var it entity.Item
	if err := pgxscan.Get(ctx, r.q, &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	sql, args, err := psql.Update("items").
		Set("description", item.Description).
		Set("unit_measure", item.UnitMeasure).
		Set("active", item.Active).
		Where(squirrel.Eq{"sku": item.SKU}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete devuelve domain.ErrConflict si alguna transacción referencia el item.
func (r *ItemRepo) Delete(ctx context.Context, sku string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM items WHERE sku = $1`, sku)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter, opts repository.ListOptions) ([]*entity.Item, int, error) {
	q := psql.Select(itemColumns...).From("items")
	if f.SKU != "" {
		q = q.Where(squirrel.ILike{"sku": contains(f.SKU)})
	}
	if f.Description != "" {
		q = q.Where(squirrel.ILike{"description": contains(f.Description)})
	}
	if f.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	total, err := count(ctx, r.q, q)
	if err != nil {
		return nil, 0, err
	}

	q = page(q.OrderBy(orderBy(opts.Sort, "sku ASC")...), opts)
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list items: %w", err)
	}
	var items []*entity.Item
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}
