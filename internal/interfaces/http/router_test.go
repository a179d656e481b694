package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermesenci/stock-control/internal/application/auth"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/application/usecase"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/lock"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/memory"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/xlsx"
	apphttp "github.com/guilhermesenci/stock-control/internal/interfaces/http"
	"github.com/guilhermesenci/stock-control/pkg/logger"
	"github.com/guilhermesenci/stock-control/pkg/password"
)

type api struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newAPI(t *testing.T, lockers ...inventory.Locker) *api {
	t.Helper()
	var locker inventory.Locker = lock.NewLocalLocker()
	if len(lockers) > 0 {
		locker = lockers[0]
	}
	store := memory.NewStore()
	log := logger.Nop()
	hasher := password.Bcrypt{Cost: 4}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(log))
	app.Use(apphttp.KeyCase("/docs"))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store, store.Accounts(), store.Users(), hasher, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		ItemUC:     usecase.NewItemUseCase(store.Items()),
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers()),
		UserUC:     usecase.NewUserUseCase(store, store.Users(), store.Accounts(), hasher),
		TransactionUC: inventory.NewTransactionUseCase(store, store.Transactions(), store.Items(), store.Suppliers(),
			locker, log),
		StockUC:   inventory.NewStockUseCase(store.Items(), store.Transactions(), 2, log, xlsx.NewStockReportWriter()),
		JWTSecret: testJWTSecret,
	})
	return &api{t: t, app: app}
}

func (a *api) do(method, path string, body any) (*http.Response, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if a.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+a.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	var out map[string]any
	if len(raw) > 0 && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (a *api) login(perms ...string) {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username":    "maria",
		"email":       "maria@example.com",
		"password":    "secreto123",
		"password2":   "secreto123",
		"firstName":   "Maria",
		"lastName":    "Silva",
		"permissions": perms,
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, body)
	account := body["account"].(map[string]any)
	assert.Equal(a.t, "Maria", account["firstName"], "las claves de salida van en camelCase")
	assert.Contains(a.t, account, "dateJoined")

	resp, body = a.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "MARIA", "password": "secreto123"})
	require.Equal(a.t, http.StatusOK, resp.StatusCode, body)
	a.token = body["token"].(string)
}

func TestAPI_FlujoDeMovimientos(t *testing.T) {
	a := newAPI(t)
	a.login("items.manage", "transactions.manage", "reports.view")

	resp, body := a.do(http.MethodPost, "/api/items", map[string]any{"sku": "A", "description": "Parafuso", "unitMeasure": "un"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "un", body["unitMeasure"])
	assert.Equal(t, true, body["active"])

	resp, body = a.do(http.MethodPost, "/api/transactions", map[string]any{
		"kind": "entry", "sku": "A", "quantity": 10, "unitCost": 2, "invoiceRef": "NF-1", "date": "2024-01-10", "time": "09:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	entry := body["transaction"].(map[string]any)
	assert.Equal(t, "entry-1", entry["id"])
	assert.Equal(t, "Maria Silva", entry["username"], "nombre del perfil de inventario")

	resp, body = a.do(http.MethodPost, "/api/transactions", map[string]any{
		"kind": "exit", "sku": "A", "quantity": 20, "date": "2024-01-11",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	resp, body = a.do(http.MethodPost, "/api/transactions", map[string]any{
		"kind": "exit", "sku": "A", "quantity": 4, "date": "2024-01-11", "time": "15:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	exit := body["transaction"].(map[string]any)
	assert.Equal(t, "exit-1", exit["id"])
	assert.Equal(t, "2", exit["unitCost"], "la salida toma el costo promedio")

	resp, body = a.do(http.MethodGet, "/api/transactions?pageSize=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	page := body["page"].(map[string]any)
	assert.EqualValues(t, 2, page["total"])
	assert.EqualValues(t, 1, page["pageSize"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "exit-1", items[0].(map[string]any)["id"], "más reciente primero")

	resp, body = a.do(http.MethodPost, "/api/ledger/validate", map[string]any{
		"sku": "A", "operationType": "delete", "transactionId": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, false, body["valid"])
	assert.EqualValues(t, 2, body["failedTransactionId"])

	resp, _ = a.do(http.MethodDelete, "/api/transactions/entry-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = a.do(http.MethodGet, "/api/items/A/stock?stockDate=2024-02-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "6", body["quantity"])
	assert.Equal(t, "12", body["totalCost"])

	resp, _ = a.do(http.MethodGet, "/api/stocks/export?format=xlsx&stockDate=2024-02-01", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "stock-costs-2024-02-01.xlsx")

	resp, body = a.do(http.MethodGet, "/api/transactions/bogus-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
}

func TestAPI_ValidacionYPermisos(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.do(http.MethodGet, "/api/items", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	a.login("items.manage")

	resp, body := a.do(http.MethodPost, "/api/items", map[string]any{"sku": "A", "unitMeasure": "un"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Contains(t, body["fields"], "description")

	resp, _ = a.do(http.MethodPost, "/api/suppliers", map[string]any{"name": "Acme"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(http.MethodGet, "/api/stocks/export?format=pdf", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = a.do(http.MethodGet, "/api/items/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, _ = a.do(http.MethodGet, "/api/suppliers/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = a.do(http.MethodGet, "/api/auth/me/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, []any{"items.manage"}, body["permissions"])
}

type busyLocker struct{}

func (busyLocker) Lock(_ context.Context, key string) (func(), error) {
	return nil, fmt.Errorf("%w: %s", lock.ErrNotObtained, key)
}

func TestAPI_ItemBloqueadoDevuelve503(t *testing.T) {
	a := newAPI(t, busyLocker{})
	a.login("items.manage", "transactions.manage")

	resp, body := a.do(http.MethodPost, "/api/items", map[string]any{"sku": "A", "description": "Parafuso", "unitMeasure": "un"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = a.do(http.MethodPost, "/api/transactions", map[string]any{
		"kind": "entry", "sku": "A", "quantity": 1, "unitCost": 2, "date": "2024-01-10",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "LOCKED", body["code"])
}

func TestAPI_RequestID(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set(apphttp.HeaderRequestID, "abc-123")
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(apphttp.HeaderRequestID))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
