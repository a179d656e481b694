package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/lock"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/memory"
	"github.com/guilhermesenci/stock-control/pkg/logger"
)

type env struct {
	store *memory.Store
	tx    *inventory.TransactionUseCase
	stock *inventory.StockUseCase
	user  int64
}

func newEnv(t *testing.T, writers ...inventory.StockReportWriter) *env {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, it := range []entity.Item{
		{SKU: "A", Description: "Parafuso", UnitMeasure: "un", Active: true},
		{SKU: "B", Description: "Arruela", UnitMeasure: "un", Active: true},
		{SKU: "C", Description: "Porca antiga", UnitMeasure: "cx", Active: false},
	} {
		require.NoError(t, store.Items().Create(ctx, &it))
	}
	u := &entity.User{Name: "Maria"}
	require.NoError(t, store.Users().Create(ctx, u))

	log := logger.Nop()
	return &env{
		store: store,
		tx: inventory.NewTransactionUseCase(store, store.Transactions(), store.Items(), store.Suppliers(),
			lock.NewLocalLocker(), log),
		stock: inventory.NewStockUseCase(store.Items(), store.Transactions(), 2, log, writers...),
		user:  u.ID,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func (e *env) entry(t *testing.T, sku, qty, cost, date string) *dto.TransactionResponse {
	t.Helper()
	out, err := e.tx.Create(context.Background(), e.user, dto.CreateTransactionRequest{
		Kind: "entry", SKU: sku, Quantity: d(qty), UnitCost: dp(cost), Date: date, Time: "09:00",
	})
	require.NoError(t, err)
	return out.Transaction
}

func (e *env) exit(t *testing.T, sku, qty, date string) *dto.TransactionResponse {
	t.Helper()
	out, err := e.tx.Create(context.Background(), e.user, dto.CreateTransactionRequest{
		Kind: "exit", SKU: sku, Quantity: d(qty), Date: date, Time: "15:30",
	})
	require.NoError(t, err)
	return out.Transaction
}

func (e *env) unitCost(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	got, err := e.tx.Get(context.Background(), id)
	require.NoError(t, err)
	return got.UnitCost
}

func assertCost(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

func TestCreate_SalidaTomaPromedioVigente(t *testing.T) {
	e := newEnv(t)
	e1 := e.entry(t, "A", "10", "5", "2024-01-10")
	e.entry(t, "A", "10", "7", "2024-01-11")

	out, err := e.tx.Create(context.Background(), e.user, dto.CreateTransactionRequest{
		Kind: "exit", SKU: "A", Quantity: d("5"), UnitCost: dp("99"), Date: "12/01/2024",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecalculatedExits)
	assertCost(t, "6", out.Transaction.UnitCost, "costo de la salida")
	assert.Equal(t, "exit-1", out.Transaction.ID)
	assert.Equal(t, "entry-1", e1.ID)
	assert.Equal(t, "2024-01-12", out.Transaction.Date)
	assertCost(t, "30", out.Transaction.TotalCost, "total")
	assert.Nil(t, out.Transaction.SupplierID)
}

func TestDetalle_IncluyeUsuarioEItem(t *testing.T) {
	e := newEnv(t)
	entry := e.entry(t, "A", "10", "5", "2024-01-10")
	assert.Equal(t, "Maria", entry.Username)
	assert.Equal(t, "Parafuso", entry.Description)

	got, err := e.tx.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Username)
	assert.Equal(t, "un", got.UnitMeasure)

	out, err := e.tx.Update(context.Background(), entry.ID, dto.UpdateTransactionRequest{UnitCost: dp("6")})
	require.NoError(t, err)
	assert.Equal(t, "Maria", out.Transaction.Username)
	assertCost(t, "6", out.Transaction.UnitCost, "costo editado")

	_, err = e.tx.Get(context.Background(), "entry-99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_Validaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.tx.Create(ctx, e.user, dto.CreateTransactionRequest{Kind: "transfer", SKU: "A", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.tx.Create(ctx, e.user, dto.CreateTransactionRequest{Kind: "entry", SKU: "A", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "entrada sin costo")

	_, err = e.tx.Create(ctx, e.user, dto.CreateTransactionRequest{Kind: "entry", SKU: "A", Quantity: d("0"), UnitCost: dp("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.tx.Create(ctx, e.user, dto.CreateTransactionRequest{Kind: "entry", SKU: "ZZ", Quantity: d("1"), UnitCost: dp("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	supplier := int64(42)
	_, err = e.tx.Create(ctx, e.user, dto.CreateTransactionRequest{
		Kind: "entry", SKU: "A", Quantity: d("1"), UnitCost: dp("1"), SupplierID: &supplier,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.tx.Create(ctx, e.user, dto.CreateTransactionRequest{
		Kind: "entry", SKU: "A", Quantity: d("1"), UnitCost: dp("1"), Date: "2024-13-45",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_SalidaSinStock(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")

	_, err := e.tx.Create(context.Background(), e.user, dto.CreateTransactionRequest{Kind: "exit", SKU: "A", Quantity: d("11")})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var rule *domain.RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "insufficient stock: available 10, requested 11", rule.Message)

	list, err := e.tx.List(context.Background(), dto.TransactionListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total, "la salida rechazada no se persiste")
}

func TestUpdate_EntradaRecalculaSalidasPosteriores(t *testing.T) {
	e := newEnv(t)
	e1 := e.entry(t, "A", "10", "5", "2024-01-10")
	e.entry(t, "A", "10", "7", "2024-01-11")
	x1 := e.exit(t, "A", "5", "2024-01-12")
	x2 := e.exit(t, "A", "5", "2024-01-13")

	out, err := e.tx.Update(context.Background(), e1.ID, dto.UpdateTransactionRequest{UnitCost: dp("8")})
	require.NoError(t, err)
	assert.Equal(t, 2, out.RecalculatedExits)
	assertCost(t, "8", out.Transaction.UnitCost, "entrada editada")
	assertCost(t, "7.5", e.unitCost(t, x1.ID), "x1")
	assertCost(t, "7.5", e.unitCost(t, x2.ID), "x2")
}

func TestUpdate_CantidadQueDejaStockNegativo(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	x1 := e.exit(t, "A", "5", "2024-01-12")

	_, err := e.tx.Update(context.Background(), x1.ID, dto.UpdateTransactionRequest{Quantity: dp("12")})
	require.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.EqualError(t, err, "operation would result in negative stock (-2) after transaction 2")

	got, err := e.tx.Get(context.Background(), x1.ID)
	require.NoError(t, err)
	assertCost(t, "5", got.Quantity, "cantidad sin cambios")
}

func TestUpdate_SalidaIgnoraFactura(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	x1 := e.exit(t, "A", "5", "2024-01-12")

	ref := "NF-1"
	out, err := e.tx.Update(context.Background(), x1.ID, dto.UpdateTransactionRequest{Quantity: dp("4"), InvoiceRef: &ref})
	require.NoError(t, err)
	assert.Empty(t, out.Transaction.InvoiceRef)
	assertCost(t, "4", out.Transaction.Quantity, "cantidad")
	assertCost(t, "5", out.Transaction.UnitCost, "costo sin cambios")
}

func TestDelete_EntradaRechazadaSiDejaNegativo(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	e2 := e.entry(t, "A", "10", "7", "2024-01-11")
	e.exit(t, "A", "15", "2024-01-12")

	_, err := e.tx.Delete(context.Background(), e2.ID)
	require.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.EqualError(t, err, "operation would result in negative stock (-5) after transaction 3")

	_, err = e.tx.Get(context.Background(), e2.ID)
	assert.NoError(t, err, "la entrada sigue existiendo")
}

func TestDelete_EntradaRecalcula(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	e2 := e.entry(t, "A", "10", "7", "2024-01-11")
	x1 := e.exit(t, "A", "5", "2024-01-12")
	assertCost(t, "6", x1.UnitCost, "antes")

	out, err := e.tx.Delete(context.Background(), e2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecalculatedExits)
	assertCost(t, "5", e.unitCost(t, x1.ID), "después")

	_, err = e.tx.Get(context.Background(), e2.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_SalidaTambienRecalcula(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	x1 := e.exit(t, "A", "5", "2024-01-11")
	e.entry(t, "A", "10", "8", "2024-01-12")
	x2 := e.exit(t, "A", "5", "2024-01-13")
	assertCost(t, "7", x2.UnitCost, "antes")

	out, err := e.tx.Delete(context.Background(), x1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecalculatedExits)
	assertCost(t, "6.5", e.unitCost(t, x2.ID), "después")
}

func TestResolve_IDCompuestoInvalido(t *testing.T) {
	e := newEnv(t)
	_, err := e.tx.Get(context.Background(), "entrada-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.tx.Delete(context.Background(), "exit-99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidate(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	e.exit(t, "A", "8", "2024-01-11")
	ctx := context.Background()

	out, err := e.tx.Validate(ctx, dto.ValidateOperationRequest{SKU: "A", OperationType: "delete", TransactionID: 1})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	require.NotNil(t, out.FailedTransactionID)
	assert.Equal(t, int64(2), *out.FailedTransactionID)
	assertCost(t, "-8", *out.StockAtFailure, "stock en la falla")

	out, err = e.tx.Validate(ctx, dto.ValidateOperationRequest{SKU: "A", OperationType: "edit", TransactionID: 2, NewQuantity: dp("3")})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, "operation is valid, final stock 7", out.Message)

	_, err = e.tx.Validate(ctx, dto.ValidateOperationRequest{SKU: "B", OperationType: "delete", TransactionID: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la transacción no es del item")

	_, err = e.tx.Validate(ctx, dto.ValidateOperationRequest{SKU: "A", OperationType: "move", TransactionID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckAvailability(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	ctx := context.Background()

	out, err := e.tx.CheckAvailability(ctx, dto.AvailabilityRequest{SKU: "A", Quantity: d("10")})
	require.NoError(t, err)
	assert.True(t, out.Valid)

	out, err = e.tx.CheckAvailability(ctx, dto.AvailabilityRequest{SKU: "A", Quantity: d("10.5")})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, "insufficient stock: available 10, requested 10.5", out.Message)

	_, err = e.tx.CheckAvailability(ctx, dto.AvailabilityRequest{SKU: "ZZ", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecalculate_PuntoFijo(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "3", "1.10", "2024-01-10")
	e.exit(t, "A", "1", "2024-01-11")
	e.entry(t, "A", "7", "2.35", "2024-01-12")
	x2 := e.exit(t, "A", "4", "2024-01-13")
	before := e.unitCost(t, x2.ID)

	for _, pivot := range []int64{0, 1, 2, 3} {
		out, err := e.tx.Recalculate(context.Background(), dto.RecalculateRequest{SKU: "A", TransactionID: pivot})
		require.NoError(t, err)
		assert.Positive(t, out.UpdatedExits)
		assertCost(t, before.String(), e.unitCost(t, x2.ID), "recalcular no cambia costos ya consistentes")
	}
}

func TestList_FiltrosYOrden(t *testing.T) {
	e := newEnv(t)
	e.entry(t, "A", "10", "5", "2024-01-10")
	e.entry(t, "B", "4", "2", "2024-02-10")
	e.exit(t, "A", "1", "2024-03-10")
	ctx := context.Background()

	all, err := e.tx.List(ctx, dto.TransactionListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "exit-1", all.Items[0].ID, "por defecto, más reciente primero")
	assert.Equal(t, "Maria", all.Items[0].Username)
	assert.Equal(t, "Parafuso", all.Items[0].Description)

	exits, err := e.tx.List(ctx, dto.TransactionListRequest{Kind: "exit"})
	require.NoError(t, err)
	assert.Len(t, exits.Items, 1)

	ranged, err := e.tx.List(ctx, dto.TransactionListRequest{DateFrom: "01/02/2024", DateTo: "2024-02-29"})
	require.NoError(t, err)
	require.Len(t, ranged.Items, 1)
	assert.Equal(t, "B", ranged.Items[0].SKU)

	bySKU, err := e.tx.List(ctx, dto.TransactionListRequest{ListRequest: dto.ListRequest{Ordering: "sku,-quantity"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-1", "exit-1", "entry-2"}, ids(bySKU.Items))

	paged, err := e.tx.List(ctx, dto.TransactionListRequest{ListRequest: dto.ListRequest{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 1)
	assert.Equal(t, 2, paged.Page.TotalPages)
	assert.Nil(t, paged.Page.Next)

	_, err = e.tx.List(ctx, dto.TransactionListRequest{ListRequest: dto.ListRequest{Ordering: "password"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func ids(items []dto.TransactionResponse) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
