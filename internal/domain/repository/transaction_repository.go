package repository

import (
	"context"
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/ledger"
)

// MovementFilter filtros del listado unificado de entradas y salidas.
// InvoiceRef solo aplica a entradas.
type MovementFilter struct {
	Kind        entity.Kind
	SKU         string
	Description string
	InvoiceRef  string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// TransactionRepository puerto del libro de movimientos (Ledger Store).
type TransactionRepository interface {
	// Create inserta la transacción y su fila de entrada o salida; completa los IDs generados.
	Create(ctx context.Context, m *entity.Movement) error
	GetByCompositeID(ctx context.Context, id entity.CompositeID) (*entity.Movement, error)
	// GetDetail como GetByCompositeID, con descripción, unidad y nombre del usuario.
	GetDetail(ctx context.Context, id entity.CompositeID) (*entity.MovementDetail, error)
	// Update persiste cantidad, costo unitario, referencia de factura y proveedor.
	Update(ctx context.Context, tx *entity.Transaction) error
	// Delete borra la transacción y su entrada o salida.
	Delete(ctx context.Context, transactionID int64) error
	// Ledger devuelve todas las líneas del item ordenadas por ID de transacción.
	Ledger(ctx context.Context, sku string) ([]ledger.Line, error)
	// UpdateUnitCosts persiste los costos recalculados de salidas.
	UpdateUnitCosts(ctx context.Context, repricings []ledger.Repricing) error
	List(ctx context.Context, filter MovementFilter, opts ListOptions) ([]*entity.MovementDetail, int, error)
}
