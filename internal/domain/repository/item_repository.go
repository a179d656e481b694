package repository

import (
	"context"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
)

// ItemFilter filtros del catálogo. SKU y Description son subcadenas sin distinguir mayúsculas.
type ItemFilter struct {
	SKU         string
	Description string
	ActiveOnly  bool
}

// ItemRepository define el puerto de persistencia para items.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// Delete devuelve domain.ErrConflict si el item tiene transacciones.
	Delete(ctx context.Context, sku string) error
	List(ctx context.Context, filter ItemFilter, opts ListOptions) ([]*entity.Item, int, error)
}
