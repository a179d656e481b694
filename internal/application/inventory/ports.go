package inventory

import (
	"context"
	"time"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que validar, mutar y recalcular se confirmen o se descarten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		itemRepo repository.ItemRepository,
		supplierRepo repository.SupplierRepository,
	) error) error
}

// Locker exclusión mutua por clave (SKU) alrededor de Validar→Mutar→Recalcular.
// release nunca es nil cuando err es nil.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// StockReport datos de un reporte de costos de stock.
type StockReport struct {
	Title       string
	StockDate   time.Time
	GeneratedAt time.Time
	Items       []dto.StockItemResponse
}

// StockReportWriter serializa un StockReport (xlsx, pdf).
type StockReportWriter interface {
	Format() string
	ContentType() string
	Write(ctx context.Context, report StockReport) ([]byte, error)
}
