package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/ledger"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/guilhermesenci/stock-control/pkg/logger"
)

type fakeWriter struct {
	got *inventory.StockReport
}

func (w *fakeWriter) Format() string      { return "csv" }
func (w *fakeWriter) ContentType() string { return "text/csv" }
func (w *fakeWriter) Write(_ context.Context, r inventory.StockReport) ([]byte, error) {
	w.got = &r
	return []byte("ok"), nil
}

// brokenLedger falla al leer el libro de fail y entra en pánico con el de panicSKU.
type brokenLedger struct {
	repository.TransactionRepository
	fail, panicSKU string
}

func (r brokenLedger) Ledger(ctx context.Context, sku string) ([]ledger.Line, error) {
	switch sku {
	case r.fail:
		return nil, errors.New("conexión perdida")
	case r.panicSKU:
		panic("libro corrupto")
	}
	return r.TransactionRepository.Ledger(ctx, sku)
}

func skus(items []dto.StockItemResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.SKU)
	}
	return out
}

func seedStock(t *testing.T, e *env) {
	t.Helper()
	e.entry(t, "A", "100", "2", "2024-01-10")
	e.exit(t, "A", "30", "2024-02-10")
	e.entry(t, "B", "5", "3.5", "2024-01-10")
	e.exit(t, "B", "5", "2024-01-20")
}

func TestPosition(t *testing.T) {
	e := newEnv(t)
	seedStock(t, e)
	ctx := context.Background()

	got, err := e.stock.Position(ctx, "A", "2024-03-01")
	require.NoError(t, err)
	assertCost(t, "70", got.Quantity, "cantidad")
	assertCost(t, "2", got.UnitCost, "promedio")
	assertCost(t, "140", got.TotalCost, "total")
	assertCost(t, "2", got.LastEntryCost, "última entrada")
	assert.Equal(t, "7 months", got.EstimatedConsumptionTime)

	early, err := e.stock.Position(ctx, "A", "15/01/2024")
	require.NoError(t, err)
	assertCost(t, "100", early.Quantity, "antes de la salida")
	assert.Equal(t, "no recent consumption", early.EstimatedConsumptionTime)

	_, err = e.stock.Position(ctx, "ZZ", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCosts(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "3", "1", "2024-01-10")
	e.entry(t, "A", "3", "2", "2024-01-11")
	e.entry(t, "A", "3", "2.005", "2024-01-12")

	got, err := e.stock.Costs(context.Background(), "A", "2024-01-11")
	require.NoError(t, err)
	assertCost(t, "1.5", got.AverageCost, "promedio al 11/01")
	assertCost(t, "2", got.LastEntryCost, "última entrada al 11/01")
	assert.Equal(t, "2024-01-11", got.StockDate)
}

func TestList_FiltraOrdenaYPagina(t *testing.T) {
	e := newEnv(t)
	seedStock(t, e)
	ctx := context.Background()

	all, err := e.stock.List(ctx, dto.StockListRequest{StockDate: "2024-03-01"})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "2024-03-01", all.StockDate)
	assert.Equal(t, "A", all.Items[0].SKU, "orden por SKU por defecto")
	assert.Equal(t, "no stock", all.Items[1].EstimatedConsumptionTime)

	withStock, err := e.stock.List(ctx, dto.StockListRequest{StockDate: "2024-03-01", HasStock: true})
	require.NoError(t, err)
	require.Len(t, withStock.Items, 1)
	assert.Equal(t, "A", withStock.Items[0].SKU)

	active, err := e.stock.List(ctx, dto.StockListRequest{
		ListRequest: dto.ListRequest{Ordering: "-description"},
		StockDate:   "2024-03-01",
		ActiveOnly:  true,
	})
	require.NoError(t, err)
	require.Len(t, active.Items, 2)
	assert.Equal(t, "A", active.Items[0].SKU, "Parafuso > Arruela")

	paged, err := e.stock.List(ctx, dto.StockListRequest{ListRequest: dto.ListRequest{Page: 3, PageSize: 1}})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "C", paged.Items[0].SKU)
	require.NotNil(t, paged.Page.Previous)
	assert.Equal(t, 2, *paged.Page.Previous)

	_, err = e.stock.List(ctx, dto.StockListRequest{ListRequest: dto.ListRequest{Ordering: "cost"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList_ErrorDeUnItemNoFallaElLote(t *testing.T) {
	e := newEnv(t)
	seedStock(t, e)
	uc := inventory.NewStockUseCase(e.store.Items(), brokenLedger{TransactionRepository: e.store.Transactions(), fail: "B"}, 2, logger.Nop())

	got, err := uc.List(context.Background(), dto.StockListRequest{StockDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, skus(got.Items))
	assertCost(t, "70", got.Items[0].Quantity, "A se valúa igual")
}

func TestList_PanicoDeUnItemNoFallaElLote(t *testing.T) {
	e := newEnv(t)
	seedStock(t, e)
	uc := inventory.NewStockUseCase(e.store.Items(), brokenLedger{TransactionRepository: e.store.Transactions(), panicSKU: "A"}, 1, logger.Nop())

	got, err := uc.List(context.Background(), dto.StockListRequest{StockDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, skus(got.Items))
}

func TestExport(t *testing.T) {
	w := &fakeWriter{}
	e := newEnv(t, w)
	seedStock(t, e)

	data, contentType, name, err := e.stock.Export(context.Background(), "CSV", dto.StockListRequest{
		ListRequest: dto.ListRequest{Ordering: "-quantity"},
		StockDate:   "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "stock-costs-2024-03-01.csv", name)
	require.NotNil(t, w.got)
	require.Len(t, w.got.Items, 3, "el reporte no se pagina")
	assert.Equal(t, "A", w.got.Items[0].SKU)

	_, _, _, err = e.stock.Export(context.Background(), "pdf", dto.StockListRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
