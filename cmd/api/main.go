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

	"github.com/jhoicas/hospital-ledger/internal/application/billing"
	"github.com/jhoicas/hospital-ledger/internal/application/events"
	"github.com/jhoicas/hospital-ledger/internal/application/fulfillment"
	"github.com/jhoicas/hospital-ledger/internal/application/sequence"
	"github.com/jhoicas/hospital-ledger/internal/application/stock"
	infracache "github.com/jhoicas/hospital-ledger/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/hospital-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/hospital-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/hospital-ledger/internal/interfaces/http"
	"github.com/jhoicas/hospital-ledger/pkg/config"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	skuRepo := postgres.NewSKURepository(pool)
	txRepo := postgres.NewStockTransactionRepository(pool)
	billRepo := postgres.NewBillRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	fulfillmentRepo := postgres.NewFulfillmentRepository(pool)
	seqRepo := postgres.NewSequenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	seqGen := sequence.NewGenerator(seqRepo)

	// Caché opcional de alertas (Redis). Sin Redis el query evalúa directo.
	var alertCache stock.AlertCache
	if cfg.Redis.Enabled {
		redisCache := infracache.NewRedisAlertCache(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Alerts.CacheTTL(),
		)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, alertas sin caché")
		} else {
			alertCache = redisCache
			defer redisCache.Close()
		}
	}

	// Notificador de recibos: consume bill.paid fuera del write-path.
	receiptGen := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)
	receiptNotifier := infrapdf.NewReceiptNotifier(billRepo, receiptGen, cfg.PDF.OutputDir, log)
	dispatcher := events.NewDispatcher(log, receiptNotifier)
	defer dispatcher.Close()

	createBillUC := billing.NewCreateBillUseCase(txRunner, billRepo, seqGen, log)
	paymentUC := billing.NewPaymentUseCase(txRunner, billRepo, paymentRepo, seqGen, dispatcher, log)
	ledgerUC := stock.NewLedgerUseCase(txRunner, skuRepo, txRepo, seqGen, log)
	alertUC := stock.NewAlertUseCase(skuRepo, alertCache, cfg.Alerts.ExpiryHorizon(), log)
	fulfillmentUC := fulfillment.NewUseCase(txRunner, skuRepo, fulfillmentRepo, seqGen, dispatcher, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Hospital Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateBill:  createBillUC,
		Payments:    paymentUC,
		StockLedger: ledgerUC,
		StockAlerts: alertUC,
		Fulfillment: fulfillmentUC,
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
