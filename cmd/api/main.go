// @title        MegaMart Analytics API
// @version      1.0
// @description  Tablero de analítica y asistente de caja de MegaMart.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/megamart-analytics/docs"
	"github.com/jhoicas/megamart-analytics/internal/application/analytics"
	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	apppos "github.com/jhoicas/megamart-analytics/internal/application/pos"
	"github.com/jhoicas/megamart-analytics/internal/application/refresh"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/cache"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/megamart"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/memory"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/megamart-analytics/internal/infrastructure/pdf"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/postgres"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/receiptxml"
	httpRouter "github.com/jhoicas/megamart-analytics/internal/interfaces/http"
	"github.com/jhoicas/megamart-analytics/pkg/config"
	"github.com/jhoicas/megamart-analytics/pkg/logger"
)

// receiptRenderer une el PDF y el XML del comprobante en un ports.ReceiptRenderer.
type receiptRenderer struct {
	*infrapdf.MarotoReceiptPDF
	*receiptxml.Builder
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("upstream", cfg.Upstream.BaseURL).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Métricas
	var prom *metrics.Metrics
	var appMetrics ports.Metrics = ports.NopMetrics{}
	clientOpts := []megamart.Option{megamart.WithLogger(log.Zerolog())}
	if cfg.Metrics.Enabled {
		prom = metrics.New()
		appMetrics = prom
		clientOpts = append(clientOpts, megamart.WithObserver(prom))
	}

	// Cliente de MegaMart con circuit breaker
	client, err := megamart.New(megamart.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		Timeout:      cfg.Upstream.Timeout,
		MaxBodyBytes: cfg.Upstream.MaxBodyBytes,
		Breaker: megamart.BreakerConfig{
			FailureThreshold: cfg.Upstream.FailureThreshold,
			SuccessThreshold: cfg.Upstream.SuccessThreshold,
			OpenTimeout:      cfg.Upstream.OpenTimeout,
		},
	}, clientOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente de MegaMart")
	}
	if prom != nil {
		prom.WatchBreaker(client.BreakerState)
	}

	checks := map[string]httpRouter.HealthCheck{}

	// Instantáneas: Redis si hay REDIS_URL, si no en memoria
	var snapshots ports.SnapshotStore = memory.NewSnapshotStore()
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		snapshots = cache.NewRedisSnapshotStore(rdb, cfg.Redis.KeyPrefix)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Msg("instantáneas en Redis")
	}

	// Comprobantes: PostgreSQL si está configurado, si no en memoria
	var receipts ports.ReceiptRepository = memory.NewReceiptRepository()
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.MigrateTx(ctx, postgres.NewTxRunner(pool)); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		receipts = postgres.NewReceiptRepository(pool)
		checks["postgres"] = pool.Ping
		log.Info().Msg("comprobantes en PostgreSQL")
	}

	// Tablero
	dashboardUC := analytics.NewDashboardUseCase(client)
	refresher := refresh.New(dashboardUC, snapshots, appMetrics, log.Zerolog(), refresh.Config{
		CustomersInterval: cfg.Refresh.CustomersInterval,
		Interval:          cfg.Refresh.Interval,
		SnapshotTTL:       cfg.Refresh.SnapshotTTL,
		RunTimeout:        cfg.Refresh.RunTimeout,
	})
	if cfg.Refresh.Enabled {
		refresher.Start(ctx)
	}

	// Caja
	sessions := apppos.NewSessionStore(cfg.POS.SessionTTL)
	go func() {
		if err := sessions.RunJanitor(ctx, time.Minute); err != nil {
			log.Error().Err(err).Msg("limpieza de sesiones de caja")
		}
	}()
	posUC := apppos.NewUseCase(apppos.Deps{
		Gateway:     client,
		Source:      client,
		Sessions:    sessions,
		Receipts:    receipts,
		Renderer:    receiptRenderer{infrapdf.NewMarotoReceiptPDF(), receiptxml.NewBuilder()},
		Metrics:     appMetrics,
		Logger:      log.Zerolog(),
		CallTimeout: cfg.POS.CallTimeout,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "MegaMart Analytics API",
	}))

	deps := httpRouter.RouterDeps{
		Refresher:   refresher,
		POS:         posUC,
		Health:      httpRouter.NewHealthHandler(cfg.App.Name, client.BreakerState, checks),
		MetricsPath: cfg.Metrics.Path,
		JWTSecret:   cfg.JWT.Secret,
	}
	if prom != nil {
		deps.Metrics = prom.Handler()
	}
	httpRouter.Router(app, deps)

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

	// Detiene los timers del tablero y el limpiador de sesiones.
	stop()
	refresher.Wait()

	log.Info().Msg("aplicación detenida")
}
