package memory

import (
	"context"
	"strings"

	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

var itemOrder = listing.NewRegistry(
	listing.Field[*entity.Item]{Name: "sku", Compare: listing.ByString(func(i *entity.Item) string { return i.SKU })},
	listing.Field[*entity.Item]{Name: "description", Compare: listing.ByFold(func(i *entity.Item) string { return i.Description })},
	listing.Field[*entity.Item]{Name: "unit_measure", Compare: listing.ByFold(func(i *entity.Item) string { return i.UnitMeasure })},
	listing.Field[*entity.Item]{Name: "active", Compare: listing.ByBool(func(i *entity.Item) bool { return i.Active })},
)

var supplierOrder = listing.NewRegistry(
	listing.Field[*entity.Supplier]{Name: "id", Compare: listing.ByInt(func(s *entity.Supplier) int64 { return s.ID })},
	listing.Field[*entity.Supplier]{Name: "name", Compare: listing.ByFold(func(s *entity.Supplier) string { return s.Name })},
	listing.Field[*entity.Supplier]{Name: "active", Compare: listing.ByBool(func(s *entity.Supplier) bool { return s.Active })},
)

// ItemRepo items en memoria.
type ItemRepo struct {
	s    *Store
	inTx bool
}

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.items[item.SKU]; ok {
		return domain.ErrDuplicate
	}
	r.s.data.items[item.SKU] = *item
	return nil
}

func (r *ItemRepo) GetBySKU(_ context.Context, sku string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.data.items[sku]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.items[item.SKU]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.items[item.SKU] = *item
	return nil
}

func (r *ItemRepo) Delete(_ context.Context, sku string) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.items[sku]; !ok {
		return domain.ErrNotFound
	}
	for _, tx := range r.s.data.transactions {
		if tx.SKU == sku {
			return domain.ErrConflict
		}
	}
	delete(r.s.data.items, sku)
	return nil
}

func (r *ItemRepo) List(_ context.Context, f repository.ItemFilter, opts repository.ListOptions) ([]*entity.Item, int, error) {
	r.s.mu.RLock()
	var out []*entity.Item
	for _, it := range r.s.data.items {
		if f.ActiveOnly && !it.Active {
			continue
		}
		if !containsFold(it.SKU, f.SKU) || !containsFold(it.Description, f.Description) {
			continue
		}
		it := it
		out = append(out, &it)
	}
	r.s.mu.RUnlock()

	itemOrder.Sort(out, withDefault(opts.Sort, "sku"))
	return paginate(out, opts)
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s    *Store
	inTx bool
}

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	defer r.s.write(r.inTx)()
	r.s.seq.supplier++
	sup.ID = r.s.seq.supplier
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id int64) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sup, nil
}

func (r *SupplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.suppliers[sup.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) Delete(_ context.Context, id int64) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.suppliers[id]; !ok {
		return domain.ErrNotFound
	}
	for _, tx := range r.s.data.transactions {
		if tx.SupplierID != nil && *tx.SupplierID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.data.suppliers, id)
	return nil
}

func (r *SupplierRepo) List(_ context.Context, f repository.SupplierFilter, opts repository.ListOptions) ([]*entity.Supplier, int, error) {
	r.s.mu.RLock()
	var out []*entity.Supplier
	for _, sup := range r.s.data.suppliers {
		if f.Active != nil && sup.Active != *f.Active {
			continue
		}
		if !containsFold(sup.Name, f.Name) {
			continue
		}
		sup := sup
		out = append(out, &sup)
	}
	r.s.mu.RUnlock()

	supplierOrder.Sort(out, withDefault(opts.Sort, "id"))
	return paginate(out, opts)
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// withDefault agrega los campos de desempate al final del orden pedido.
func withDefault(keys []repository.SortKey, fields ...string) []repository.SortKey {
	out := append([]repository.SortKey(nil), keys...)
	for _, f := range fields {
		out = append(out, repository.SortKey{Field: f})
	}
	return out
}

func paginate[T any](items []T, opts repository.ListOptions) ([]T, int, error) {
	total := len(items)
	if opts.Offset >= total {
		return []T{}, total, nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items, total, nil
}
