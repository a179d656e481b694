package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/internal/application/auth"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/application/usecase"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ItemUC        *usecase.ItemUseCase
	SupplierUC    *usecase.SupplierUseCase
	UserUC        *usecase.UserUseCase
	TransactionUC *inventory.TransactionUseCase
	StockUC       *inventory.StockUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/auth/me/inventory", authHandler.Inventory)

	itemHandler := NewItemHandler(deps.ItemUC, deps.StockUC)
	manageItems := RequirePermission(entity.PermItemsManage)
	items := protected.Group("/items")
	items.Post("/", manageItems, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:sku/stock", itemHandler.Stock)
	items.Get("/:sku/costs", itemHandler.Costs)
	items.Get("/:sku", itemHandler.Get)
	items.Put("/:sku", manageItems, itemHandler.Update)
	items.Delete("/:sku", manageItems, itemHandler.Delete)

	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	manageSuppliers := RequirePermission(entity.PermSuppliersManage)
	suppliers := protected.Group("/suppliers")
	suppliers.Post("/", manageSuppliers, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.Get)
	suppliers.Put("/:id", manageSuppliers, supplierHandler.Update)
	suppliers.Delete("/:id", manageSuppliers, supplierHandler.Delete)

	txHandler := NewTransactionHandler(deps.TransactionUC, deps.AuthUC)
	manageTx := RequirePermission(entity.PermTransactionsManage)
	transactions := protected.Group("/transactions")
	transactions.Post("/", manageTx, txHandler.Create)
	transactions.Get("/", txHandler.List)
	transactions.Get("/:id", txHandler.Get)
	transactions.Put("/:id", manageTx, txHandler.Update)
	transactions.Delete("/:id", manageTx, txHandler.Delete)

	// Simulación y consulta del libro; recalcular reescribe costos.
	ledgerGroup := protected.Group("/ledger")
	ledgerGroup.Post("/validate", txHandler.Validate)
	ledgerGroup.Post("/availability", txHandler.Availability)
	ledgerGroup.Post("/recalculate", manageTx, txHandler.Recalculate)

	stockHandler := NewStockHandler(deps.StockUC)
	stocks := protected.Group("/stocks")
	stocks.Get("/", stockHandler.List)
	stocks.Get("/export", RequirePermission(entity.PermReportsView), stockHandler.Export)

	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users", RequirePermission(entity.PermUsersManage))
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
}
