package inventory

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/ledger"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/guilhermesenci/stock-control/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultValuationWorkers concurrencia por defecto al valuar el catálogo.
const DefaultValuationWorkers = 8

var stockSort = listing.NewRegistry(
	listing.Field[dto.StockItemResponse]{Name: "sku", Compare: listing.ByString(func(s dto.StockItemResponse) string { return s.SKU })},
	listing.Field[dto.StockItemResponse]{Name: "description", Compare: listing.ByFold(func(s dto.StockItemResponse) string { return s.Description })},
	listing.Field[dto.StockItemResponse]{Name: "unit_measure", Compare: listing.ByFold(func(s dto.StockItemResponse) string { return s.UnitMeasure })},
	listing.Field[dto.StockItemResponse]{Name: "active", Compare: listing.ByBool(func(s dto.StockItemResponse) bool { return s.Active })},
	listing.Field[dto.StockItemResponse]{Name: "quantity", Compare: listing.ByDecimal(func(s dto.StockItemResponse) decimal.Decimal { return s.Quantity })},
	listing.Field[dto.StockItemResponse]{Name: "unit_cost", Compare: listing.ByDecimal(func(s dto.StockItemResponse) decimal.Decimal { return s.UnitCost })},
	listing.Field[dto.StockItemResponse]{Name: "total_cost", Compare: listing.ByDecimal(func(s dto.StockItemResponse) decimal.Decimal { return s.TotalCost })},
	listing.Field[dto.StockItemResponse]{Name: "last_entry_cost", Compare: listing.ByDecimal(func(s dto.StockItemResponse) decimal.Decimal { return s.LastEntryCost })},
)

// StockUseCase valuación de stock por item a una fecha de corte.
type StockUseCase struct {
	itemRepo repository.ItemRepository
	txRepo   repository.TransactionRepository
	writers  map[string]StockReportWriter
	workers  int
	log      *logger.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso. workers <= 0 usa DefaultValuationWorkers.
func NewStockUseCase(
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
	workers int,
	log *logger.Logger,
	writers ...StockReportWriter,
) *StockUseCase {
	if workers <= 0 {
		workers = DefaultValuationWorkers
	}
	uc := &StockUseCase{
		itemRepo: itemRepo,
		txRepo:   txRepo,
		writers:  make(map[string]StockReportWriter, len(writers)),
		workers:  workers,
		log:      log.Component("stock"),
		now:      time.Now,
	}
	for _, w := range writers {
		uc.writers[w.Format()] = w
	}
	return uc
}

// List valúa los items que cumplen el filtro, los ordena y pagina.
func (uc *StockUseCase) List(ctx context.Context, in dto.StockListRequest) (*dto.StockListResponse, error) {
	asOf, err := ParseDate(in.StockDate, uc.now())
	if err != nil {
		return nil, err
	}
	sort, err := stockSort.Parse(in.Ordering)
	if err != nil {
		return nil, err
	}
	items, err := uc.evaluateCatalog(ctx, in, asOf)
	if err != nil {
		return nil, err
	}
	stockSort.Sort(items, sort)

	page := in.PageOf()
	return &dto.StockListResponse{
		StockDate: asOf.Format("2006-01-02"),
		Items:     listing.Slice(items, page),
		Page:      dto.NewPageResponse(page, len(items)),
	}, nil
}

// Position valuación completa de un item.
func (uc *StockUseCase) Position(ctx context.Context, sku, stockDate string) (*dto.StockItemResponse, error) {
	asOf, err := ParseDate(stockDate, uc.now())
	if err != nil {
		return nil, err
	}
	item, err := uc.getItem(ctx, sku)
	if err != nil {
		return nil, err
	}
	out, err := uc.evaluate(ctx, item, asOf)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Costs costo promedio y último costo de entrada de un item a la fecha.
func (uc *StockUseCase) Costs(ctx context.Context, sku, stockDate string) (*dto.ItemCostResponse, error) {
	asOf, err := ParseDate(stockDate, uc.now())
	if err != nil {
		return nil, err
	}
	item, err := uc.getItem(ctx, sku)
	if err != nil {
		return nil, err
	}
	lines, err := uc.txRepo.Ledger(ctx, item.SKU)
	if err != nil {
		return nil, err
	}
	return &dto.ItemCostResponse{
		SKU:           item.SKU,
		StockDate:     asOf.Format("2006-01-02"),
		AverageCost:   ledger.AverageCost(lines, asOf).RoundBank(ledger.CostPlaces),
		LastEntryCost: ledger.LastEntryCost(lines, asOf),
	}, nil
}

// Export genera el reporte de costos de stock en el formato pedido (xlsx, pdf).
// Devuelve el contenido, el content-type y el nombre de archivo sugerido.
func (uc *StockUseCase) Export(ctx context.Context, format string, in dto.StockListRequest) ([]byte, string, string, error) {
	w, ok := uc.writers[strings.ToLower(format)]
	if !ok {
		return nil, "", "", fmt.Errorf("%w: formato de reporte %q", domain.ErrInvalidInput, format)
	}
	asOf, err := ParseDate(in.StockDate, uc.now())
	if err != nil {
		return nil, "", "", err
	}
	sort, err := stockSort.Parse(in.Ordering)
	if err != nil {
		return nil, "", "", err
	}
	items, err := uc.evaluateCatalog(ctx, in, asOf)
	if err != nil {
		return nil, "", "", err
	}
	stockSort.Sort(items, sort)

	data, err := w.Write(ctx, StockReport{
		Title:       "Stock costs",
		StockDate:   asOf,
		GeneratedAt: uc.now(),
		Items:       items,
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("generar reporte %s: %w", w.Format(), err)
	}
	name := fmt.Sprintf("stock-costs-%s.%s", asOf.Format("2006-01-02"), w.Format())
	return data, w.ContentType(), name, nil
}

// evaluateCatalog valúa en paralelo todos los items del filtro. Un item que falla se
// registra y se omite; el resto del listado se devuelve igual. Solo la cancelación del
// contexto aborta el listado completo.
func (uc *StockUseCase) evaluateCatalog(ctx context.Context, in dto.StockListRequest, asOf time.Time) ([]dto.StockItemResponse, error) {
	catalog, _, err := uc.itemRepo.List(ctx, repository.ItemFilter{
		SKU:         in.SKU,
		Description: in.Description,
		ActiveOnly:  in.ActiveOnly,
	}, repository.ListOptions{Sort: []repository.SortKey{{Field: "sku", Column: "sku"}}})
	if err != nil {
		return nil, err
	}

	results := make([]*dto.StockItemResponse, len(catalog))
	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, item := range catalog {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					uc.log.Error().
						Str("sku", item.SKU).
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("pánico valuando item")
					mu.Lock()
					failed = append(failed, item.SKU)
					mu.Unlock()
					err = nil
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := uc.evaluate(gctx, item, asOf)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				uc.log.Warn().Err(err).Str("sku", item.SKU).Msg("no se pudo valuar el item, se omite")
				mu.Lock()
				failed = append(failed, item.SKU)
				mu.Unlock()
				return nil
			}
			results[i] = &v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		uc.log.Warn().Strs("skus", failed).Msg("items omitidos en la valuación")
	}

	out := make([]dto.StockItemResponse, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if in.HasStock && !r.Quantity.IsPositive() {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (uc *StockUseCase) evaluate(ctx context.Context, item *entity.Item, asOf time.Time) (dto.StockItemResponse, error) {
	lines, err := uc.txRepo.Ledger(ctx, item.SKU)
	if err != nil {
		return dto.StockItemResponse{}, err
	}
	v := ledger.Evaluate(lines, asOf)
	unitCost := v.AverageCost.RoundBank(ledger.CostPlaces)
	return dto.StockItemResponse{
		SKU:                      item.SKU,
		Description:              item.Description,
		UnitMeasure:              item.UnitMeasure,
		Active:                   item.Active,
		Quantity:                 v.Quantity,
		UnitCost:                 unitCost,
		TotalCost:                v.Quantity.Mul(v.AverageCost).RoundBank(ledger.CostPlaces),
		LastEntryCost:            v.LastEntryCost,
		EstimatedConsumptionTime: v.Consumption,
	}, nil
}

func (uc *StockUseCase) getItem(ctx context.Context, sku string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", sku, domain.ErrNotFound)
	}
	return item, nil
}
