package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/ledger"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// movementColumns columnas de la vista movements unida a transactions, items y users.
var movementColumns = []string{
	"m.kind",
	"m.row_id",
	"m.user_id",
	"m.occurred_at",
	"t.id AS transaction_id",
	"COALESCE(t.invoice_ref, '') AS invoice_ref",
	"t.sku",
	"t.quantity",
	"t.unit_cost",
	"t.supplier_id",
	"i.description",
	"i.unit_measure",
	"COALESCE(u.name, '') AS user_name",
}

type movementRow struct {
	Kind          string          `db:"kind"`
	RowID         int64           `db:"row_id"`
	UserID        int64           `db:"user_id"`
	OccurredAt    time.Time       `db:"occurred_at"`
	TransactionID int64           `db:"transaction_id"`
	InvoiceRef    string          `db:"invoice_ref"`
	SKU           string          `db:"sku"`
	Quantity      decimal.Decimal `db:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost"`
	SupplierID    *int64          `db:"supplier_id"`
	Description   string          `db:"description"`
	UnitMeasure   string          `db:"unit_measure"`
	UserName      string          `db:"user_name"`
}

func (row movementRow) detail() *entity.MovementDetail {
	return &entity.MovementDetail{
		Movement: entity.Movement{
			Kind:  entity.Kind(row.Kind),
			RowID: row.RowID,
			Transaction: entity.Transaction{
				ID:         row.TransactionID,
				InvoiceRef: row.InvoiceRef,
				SKU:        row.SKU,
				Quantity:   row.Quantity,
				UnitCost:   row.UnitCost,
				SupplierID: row.SupplierID,
			},
			UserID:     row.UserID,
			OccurredAt: row.OccurredAt,
		},
		ItemDescription: row.Description,
		UnitMeasure:     row.UnitMeasure,
		UserName:        row.UserName,
	}
}

type ledgerRow struct {
	TransactionID int64           `db:"id"`
	Kind          string          `db:"kind"`
	Quantity      decimal.Decimal `db:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost"`
	OccurredAt    time.Time       `db:"occurred_at"`
}

// TransactionRepo libro de movimientos sobre PostgreSQL. Entradas y salidas comparten
// la tabla transactions; la vista movements las une para lecturas.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func movementTable(k entity.Kind) (string, error) {
	switch k {
	case entity.KindEntry:
		return "entries", nil
	case entity.KindExit:
		return "exits", nil
	}
	return "", fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, k)
}

// Create inserta la transacción y su fila de entrada o salida. SKU, proveedor o usuario
// inexistentes devuelven domain.ErrConflict.
func (r *TransactionRepo) Create(ctx context.Context, m *entity.Movement) error {
	table, err := movementTable(m.Kind)
	if err != nil {
		return err
	}
	t := &m.Transaction
	err = r.q.QueryRow(ctx, `
		INSERT INTO transactions (kind, invoice_ref, sku, quantity, unit_cost, supplier_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING id`,
		string(m.Kind), t.InvoiceRef, t.SKU, t.Quantity, t.UnitCost, t.SupplierID,
	).Scan(&t.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", constraintOf(err), domain.ErrConflict)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	err = r.q.QueryRow(ctx,
		`INSERT INTO `+table+` (transaction_id, user_id, occurred_at) VALUES ($1, $2, $3) RETURNING id`,
		t.ID, m.UserID, m.OccurredAt,
	).Scan(&m.RowID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", constraintOf(err), domain.ErrConflict)
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *TransactionRepo) baseSelect() squirrel.SelectBuilder {
	return psql.Select(movementColumns...).
		From("movements m").
		Join("transactions t ON t.id = m.transaction_id").
		Join("items i ON i.sku = t.sku").
		LeftJoin("users u ON u.id = m.user_id")
}

// GetByCompositeID devuelve (nil, nil) si no existe.
func (r *TransactionRepo) GetByCompositeID(ctx context.Context, id entity.CompositeID) (*entity.Movement, error) {
	d, err := r.GetDetail(ctx, id)
	if err != nil || d == nil {
		return nil, err
	}
	return &d.Movement, nil
}

// GetDetail devuelve (nil, nil) si no existe.
func (r *TransactionRepo) GetDetail(ctx context.Context, id entity.CompositeID) (*entity.MovementDetail, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"m.kind": string(id.Kind), "m.row_id": id.RowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get movement: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return row.detail(), nil
}

func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transactions
		SET quantity = $2, unit_cost = $3, invoice_ref = NULLIF($4, ''), supplier_id = $5
		WHERE id = $1`,
		t.ID, t.Quantity, t.UnitCost, t.InvoiceRef, t.SupplierID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", constraintOf(err), domain.ErrConflict)
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la transacción; la fila de entrada o salida cae por cascada.
func (r *TransactionRepo) Delete(ctx context.Context, transactionID int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) Ledger(ctx context.Context, sku string) ([]ledger.Line, error) {
	var rows []ledgerRow
	err := pgxscan.Select(ctx, r.q, &rows, `
		SELECT t.id, t.kind, t.quantity, t.unit_cost, m.occurred_at
		FROM transactions t
		JOIN movements m ON m.transaction_id = t.id
		WHERE t.sku = $1
		ORDER BY t.id`, sku)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: %w", sku, err)
	}
	lines := make([]ledger.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, ledger.Line{
			TransactionID: row.TransactionID,
			Kind:          entity.Kind(row.Kind),
			Quantity:      row.Quantity,
			UnitCost:      row.UnitCost,
			Date:          row.OccurredAt,
		})
	}
	return lines, nil
}

// UpdateUnitCosts aplica todos los costos en una sola sentencia.
func (r *TransactionRepo) UpdateUnitCosts(ctx context.Context, repricings []ledger.Repricing) error {
	if len(repricings) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(repricings))
	costs := make([]string, 0, len(repricings))
	for _, rp := range repricings {
		ids = append(ids, rp.TransactionID)
		costs = append(costs, rp.UnitCost.String())
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE transactions t
		SET unit_cost = v.unit_cost
		FROM unnest($1::bigint[], $2::numeric[]) AS v(id, unit_cost)
		WHERE t.id = v.id`, ids, costs)
	if err != nil {
		return fmt.Errorf("update unit costs: %w", err)
	}
	if int(cmd.RowsAffected()) != len(repricings) {
		return fmt.Errorf("update unit costs: %d de %d filas: %w", cmd.RowsAffected(), len(repricings), domain.ErrNotFound)
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, f repository.MovementFilter, opts repository.ListOptions) ([]*entity.MovementDetail, int, error) {
	q := r.baseSelect()
	if f.Kind != "" {
		q = q.Where(squirrel.Eq{"m.kind": string(f.Kind)})
	}
	if f.InvoiceRef != "" {
		q = q.Where(squirrel.Eq{"m.kind": string(entity.KindEntry)}).
			Where(squirrel.ILike{"t.invoice_ref": contains(f.InvoiceRef)})
	}
	if f.SKU != "" {
		q = q.Where(squirrel.ILike{"t.sku": contains(f.SKU)})
	}
	if f.Description != "" {
		q = q.Where(squirrel.ILike{"i.description": contains(f.Description)})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"m.occurred_at": startOfDay(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.Lt{"m.occurred_at": startOfDay(*f.DateTo).AddDate(0, 0, 1)})
	}

	total, err := count(ctx, r.q, q)
	if err != nil {
		return nil, 0, err
	}

	keys := opts.Sort
	if len(keys) == 0 {
		keys = []repository.SortKey{{Field: "date", Column: "m.occurred_at", Desc: true}}
	}
	sql, args, err := page(q.OrderBy(orderBy(keys, "t.id DESC")...), opts).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	out := make([]*entity.MovementDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.detail())
	}
	return out, total, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
