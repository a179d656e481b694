package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/guilhermesenci/stock-control/docs"
	"github.com/guilhermesenci/stock-control/internal/application/auth"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/application/ports"
	"github.com/guilhermesenci/stock-control/internal/application/usecase"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/lock"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/memory"
	infrapdf "github.com/guilhermesenci/stock-control/internal/infrastructure/pdf"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/postgres"
	infraxlsx "github.com/guilhermesenci/stock-control/internal/infrastructure/xlsx"
	httpRouter "github.com/guilhermesenci/stock-control/internal/interfaces/http"
	"github.com/guilhermesenci/stock-control/pkg/config"
	"github.com/guilhermesenci/stock-control/pkg/logger"
	"github.com/guilhermesenci/stock-control/pkg/password"
)

// stores repositorios y transacciones del driver elegido.
type stores struct {
	txRunner    inventory.TxRunner
	identityTx  ports.IdentityTxRunner
	items       repository.ItemRepository
	suppliers   repository.SupplierRepository
	txs         repository.TransactionRepository
	accounts    repository.AccountRepository
	users       repository.UserRepository
	healthCheck func(ctx context.Context) error
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET vacío: se usa un secreto efímero, los tokens no sobreviven al reinicio")
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	var locker inventory.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Ledger.LockTTL, cfg.Ledger.LockWait, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock por SKU en Redis")
	}

	hasher := password.Bcrypt{}
	authUC := auth.NewAuthUseCase(st.identityTx, st.accounts, st.users, hasher, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	transactionUC := inventory.NewTransactionUseCase(st.txRunner, st.txs, st.items, st.suppliers, locker, log)
	stockUC := inventory.NewStockUseCase(st.items, st.txs, cfg.Ledger.ValuationWorkers, log,
		infraxlsx.NewStockReportWriter(),
		infrapdf.NewStockReportWriter(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httpRouter.ErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))
	app.Use(httpRouter.KeyCase("/docs", "/openapi.json"))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Control API",
	}))
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Type("json")
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := st.healthCheck(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ItemUC:        usecase.NewItemUseCase(st.items),
		SupplierUC:    usecase.NewSupplierUseCase(st.suppliers),
		UserUC:        usecase.NewUserUseCase(st.identityTx, st.users, st.accounts, hasher),
		TransactionUC: transactionUC,
		StockUC:       stockUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStores abre el driver configurado. En postgres aplica las migraciones pendientes.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			txRunner:    s,
			identityTx:  s,
			items:       s.Items(),
			suppliers:   s.Suppliers(),
			txs:         s.Transactions(),
			accounts:    s.Accounts(),
			users:       s.Users(),
			healthCheck: func(context.Context) error { return nil },
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &stores{
		txRunner:    postgres.NewTxRunner(pool),
		identityTx:  postgres.NewTxRunner(pool),
		items:       postgres.NewItemRepository(pool),
		suppliers:   postgres.NewSupplierRepository(pool),
		txs:         postgres.NewTransactionRepository(pool),
		accounts:    postgres.NewAccountRepository(pool),
		users:       postgres.NewUserRepository(pool),
		healthCheck: pool.Ping,
		close:       pool.Close,
	}, nil
}
