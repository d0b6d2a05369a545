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
	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/events"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/upstream"
	httpRouter "github.com/jhoicas/Logistica-api/internal/interfaces/http"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repo, closeRepo := newDraftRepository(ctx, cfg, log)
	defer closeRepo()

	recorder := metrics.NewRecorder()
	gateway := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log.Component("upstream"), recorder)

	var notifier draft.SubmissionNotifier = events.NewLogNotifier(log.Zerolog())
	if cfg.Kafka.Enabled() {
		kn := events.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Zerolog())
		defer func() {
			if err := kn.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		notifier = kn
	}

	limits := shipment.DocumentLimits{MaxCount: cfg.Documents.MaxCount, MaxBytes: cfg.Documents.MaxBytes}
	wizardUC := draft.NewWizardUseCase(repo, gateway, notifier, recorder, log.Zerolog(), draft.WizardConfig{
		DefaultPrices: entity.ServicePrices{
			LiftGate:    cfg.Catalog.LiftGatePrice,
			Appointment: cfg.Catalog.AppointmentPrice,
			PalletJack:  cfg.Catalog.PalletJackPrice,
		},
		PlaceholderShippingCost: cfg.Catalog.PlaceholderShippingCost,
		Limits:                  limits,
	})
	editUC := draft.NewEditUseCase(repo, gateway, notifier, recorder, log.Zerolog(), limits)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimit,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Logistica API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", metrics.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		WizardUC:  wizardUC,
		EditUC:    editUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Log:       log.Component("http"),
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// newDraftRepository elige el almacén de borradores según DRAFT_STORE.
func newDraftRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.DraftRepository, func()) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		repo := postgres.NewDraftRepository(pool, cfg.Store.TTL)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema de borradores")
		}
		go purgeLoop(ctx, repo, log)
		return repo, pool.Close

	case config.StoreRedis:
		rdb, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		return redisstore.NewDraftRepository(rdb, cfg.Redis.KeyPrefix, cfg.Store.TTL), func() { _ = rdb.Close() }
	}
	repo := memory.NewDraftRepository(cfg.Store.TTL)
	if cfg.Store.TTL > 0 {
		go purgeLoop(ctx, repo, log)
	}
	return repo, func() {}
}

// draftPurger almacenes que no expiran solos (memoria y PostgreSQL).
type draftPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeLoop borra periódicamente los borradores vencidos.
func purgeLoop(ctx context.Context, repo draftPurger, log *logger.Logger) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("purga de borradores")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("borradores vencidos eliminados")
			}
		}
	}
}
