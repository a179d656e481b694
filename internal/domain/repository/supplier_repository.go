package repository

import (
	"context"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
)

// SupplierFilter filtros de proveedores.
type SupplierFilter struct {
	Name   string
	Active *bool
}

// SupplierRepository define el puerto de persistencia para proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id int64) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	// Delete devuelve domain.ErrConflict si el proveedor está referenciado.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter SupplierFilter, opts ListOptions) ([]*entity.Supplier, int, error)
}
