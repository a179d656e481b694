package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/ledger"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

type detail = *entity.MovementDetail

var movementOrder = listing.NewRegistry(
	listing.Field[detail]{Name: "id", Compare: listing.ByInt(func(d detail) int64 { return d.Transaction.ID })},
	listing.Field[detail]{Name: "transaction_id", Compare: listing.ByInt(func(d detail) int64 { return d.Transaction.ID })},
	listing.Field[detail]{Name: "date", Compare: listing.ByTime(func(d detail) time.Time { return d.OccurredAt })},
	listing.Field[detail]{Name: "transaction_type", Compare: listing.ByString(func(d detail) string { return string(d.Kind) })},
	listing.Field[detail]{Name: "sku", Compare: listing.ByString(func(d detail) string { return d.Transaction.SKU })},
	listing.Field[detail]{Name: "description", Compare: listing.ByFold(func(d detail) string { return d.ItemDescription })},
	listing.Field[detail]{Name: "quantity", Compare: listing.ByDecimal(func(d detail) decimal.Decimal { return d.Transaction.Quantity })},
	listing.Field[detail]{Name: "unit_cost", Compare: listing.ByDecimal(func(d detail) decimal.Decimal { return d.Transaction.UnitCost })},
	listing.Field[detail]{Name: "total_cost", Compare: listing.ByDecimal(func(d detail) decimal.Decimal {
		return d.Transaction.Quantity.Mul(d.Transaction.UnitCost)
	})},
	listing.Field[detail]{Name: "invoice_ref", Compare: listing.ByFold(func(d detail) string { return d.Transaction.InvoiceRef })},
	listing.Field[detail]{Name: "username", Compare: listing.ByFold(func(d detail) string { return d.UserName })},
)

// TransactionRepo libro de movimientos en memoria.
type TransactionRepo struct {
	s    *Store
	inTx bool
}

// Create valida las referencias como lo harían las FK y asigna IDs de las secuencias.
func (r *TransactionRepo) Create(_ context.Context, m *entity.Movement) error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, m.Kind)
	}
	defer r.s.write(r.inTx)()

	if _, ok := r.s.data.items[m.Transaction.SKU]; !ok {
		return domain.ErrConflict
	}
	if id := m.Transaction.SupplierID; id != nil {
		if _, ok := r.s.data.suppliers[*id]; !ok {
			return domain.ErrConflict
		}
	}

	r.s.seq.transaction++
	m.Transaction.ID = r.s.seq.transaction
	if m.Kind == entity.KindEntry {
		r.s.seq.entry++
		m.RowID = r.s.seq.entry
	} else {
		r.s.seq.exit++
		m.RowID = r.s.seq.exit
	}
	cid := m.CompositeID()
	r.s.data.transactions[m.Transaction.ID] = m.Transaction
	r.s.data.movements[cid] = movementRow{
		Kind:          m.Kind,
		RowID:         m.RowID,
		TransactionID: m.Transaction.ID,
		UserID:        m.UserID,
		OccurredAt:    m.OccurredAt,
	}
	r.s.data.byTx[m.Transaction.ID] = cid
	return nil
}

func (r *TransactionRepo) GetByCompositeID(_ context.Context, id entity.CompositeID) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.data.movements[id]
	if !ok {
		return nil, nil
	}
	m := r.s.movement(row)
	return &m, nil
}

func (r *TransactionRepo) GetDetail(_ context.Context, id entity.CompositeID) (*entity.MovementDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.data.movements[id]
	if !ok {
		return nil, nil
	}
	return r.s.detail(row), nil
}

func (r *TransactionRepo) Update(_ context.Context, tx *entity.Transaction) error {
	defer r.s.write(r.inTx)()
	cur, ok := r.s.data.transactions[tx.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if id := tx.SupplierID; id != nil {
		if _, ok := r.s.data.suppliers[*id]; !ok {
			return domain.ErrConflict
		}
	}
	cur.Quantity = tx.Quantity
	cur.UnitCost = tx.UnitCost
	cur.InvoiceRef = tx.InvoiceRef
	cur.SupplierID = tx.SupplierID
	r.s.data.transactions[tx.ID] = cur
	return nil
}

func (r *TransactionRepo) Delete(_ context.Context, transactionID int64) error {
	defer r.s.write(r.inTx)()
	cid, ok := r.s.data.byTx[transactionID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.movements, cid)
	delete(r.s.data.byTx, transactionID)
	delete(r.s.data.transactions, transactionID)
	return nil
}

func (r *TransactionRepo) Ledger(_ context.Context, sku string) ([]ledger.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var lines []ledger.Line
	for _, row := range r.s.data.movements {
		tx := r.s.data.transactions[row.TransactionID]
		if tx.SKU != sku {
			continue
		}
		lines = append(lines, ledger.Line{
			TransactionID: tx.ID,
			Kind:          row.Kind,
			Quantity:      tx.Quantity,
			UnitCost:      tx.UnitCost,
			Date:          row.OccurredAt,
		})
	}
	slices.SortFunc(lines, func(a, b ledger.Line) int { return cmp.Compare(a.TransactionID, b.TransactionID) })
	return lines, nil
}

func (r *TransactionRepo) UpdateUnitCosts(_ context.Context, repricings []ledger.Repricing) error {
	defer r.s.write(r.inTx)()
	for _, rp := range repricings {
		tx, ok := r.s.data.transactions[rp.TransactionID]
		if !ok {
			return fmt.Errorf("repricing transacción %d: %w", rp.TransactionID, domain.ErrNotFound)
		}
		tx.UnitCost = rp.UnitCost
		r.s.data.transactions[rp.TransactionID] = tx
	}
	return nil
}

func (r *TransactionRepo) List(_ context.Context, f repository.MovementFilter, opts repository.ListOptions) ([]*entity.MovementDetail, int, error) {
	r.s.mu.RLock()
	var out []*entity.MovementDetail
	for _, row := range r.s.data.movements {
		d := r.s.detail(row)
		if f.Kind != "" && d.Kind != f.Kind {
			continue
		}
		if f.InvoiceRef != "" && (d.Kind != entity.KindEntry || !containsFold(d.Transaction.InvoiceRef, f.InvoiceRef)) {
			continue
		}
		if !containsFold(d.Transaction.SKU, f.SKU) || !containsFold(d.ItemDescription, f.Description) {
			continue
		}
		if f.DateFrom != nil && dateOf(d.OccurredAt).Before(dateOf(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && dateOf(d.OccurredAt).After(dateOf(*f.DateTo)) {
			continue
		}
		out = append(out, d)
	}
	r.s.mu.RUnlock()

	keys := opts.Sort
	if len(keys) == 0 {
		keys = []repository.SortKey{{Field: "date", Desc: true}}
	}
	movementOrder.Sort(out, append(slices.Clip(keys), repository.SortKey{Field: "id", Desc: true}))
	return paginate(out, opts)
}

// movement reconstruye el movimiento. Llamar con mu tomado.
func (s *Store) movement(row movementRow) entity.Movement {
	return entity.Movement{
		Kind:        row.Kind,
		RowID:       row.RowID,
		Transaction: s.data.transactions[row.TransactionID],
		UserID:      row.UserID,
		OccurredAt:  row.OccurredAt,
	}
}

func (s *Store) detail(row movementRow) *entity.MovementDetail {
	d := &entity.MovementDetail{Movement: s.movement(row)}
	if it, ok := s.data.items[d.Transaction.SKU]; ok {
		d.ItemDescription = it.Description
		d.UnitMeasure = it.UnitMeasure
	}
	if u, ok := s.data.users[row.UserID]; ok {
		d.UserName = u.Name
	}
	return d
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
