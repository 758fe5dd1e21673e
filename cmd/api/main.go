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
	"github.com/jhoicas/stock-api/docs"
	"github.com/jhoicas/stock-api/internal/application/alerts"
	appanalytics "github.com/jhoicas/stock-api/internal/application/analytics"
	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/infrastructure/mail"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-api/internal/interfaces/http"
	"github.com/jhoicas/stock-api/migrations"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

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
		Str("timezone", cfg.App.Timezone).
		Msg("iniciando aplicación")

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(pool, migrations.FS, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar migraciones")
		}
		n, err := migrator.Up(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Int("applied", n).Msg("esquema al día")
	}

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Inventory.TxMaxRetries, log)
	dashboardRepo := postgres.NewDashboardRepository(txRunner)

	// Avisos de stock bajo: SMTP si hay host configurado, si no solo log.
	// Se despachan fuera de la transacción y nunca hacen fallar la petición.
	notifier := mail.New(cfg.Mail, log)
	dispatcher := alerts.NewDispatcher(notifier, userRepo, log,
		time.Duration(cfg.Inventory.NotifyTimeoutSeconds)*time.Second)

	movementUC := inventory.NewMovementUseCase(txRunner, movementRepo, productRepo, userRepo, dispatcher, inventory.Options{
		AllowNegativeStock: cfg.Inventory.AllowNegativeStock,
		Location:           loc,
	})
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, categoryRepo, userRepo, movementUC, dispatcher)
	dashboardUC := appanalytics.NewDashboardUseCase(dashboardRepo, loc)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		AccessMinutes:  cfg.JWT.AccessMinutes,
		RefreshMinutes: cfg.JWT.RefreshMinutes,
		Issuer:         cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: docs.SwaggerJSON,
		Path:        "docs",
		Title:       "Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CategoryUC:  categoryUC,
		ProductUC:   productUC,
		MovementUC:  movementUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
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

	// Esperar los avisos en curso antes de cerrar el pool (usan ListStaffEmails).
	dispatcher.Wait()

	log.Info().Msg("aplicación detenida")
}
