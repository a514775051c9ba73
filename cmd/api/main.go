package main

import (
	"context"
	"errors"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"datamorph/internal/auth"
	"datamorph/internal/config"
	"datamorph/internal/database"
	"datamorph/internal/database/migration"
	handlers "datamorph/internal/http/handler"
	"datamorph/internal/http/middleware"
	"datamorph/internal/logger"
	"datamorph/internal/otel"
	"datamorph/internal/repository/postgres"
	"datamorph/internal/service"
	"datamorph/internal/storage"
)

const (
	serviceName     = "datamorph-api"
	shutdownTimeout = 10 * time.Second
	// multipart framing on top of the largest accepted file
	bodyLimitSlack = 1 << 20
)

// bodyLimit is the fiber request body cap for a max upload size.
// A max of zero or less means uploads are not capped.
func bodyLimit(maxFileBytes int64) int {
	if maxFileBytes <= 0 || maxFileBytes > int64(math.MaxInt-bodyLimitSlack) {
		return math.MaxInt
	}
	return int(maxFileBytes) + bodyLimitSlack
}

// @title       DataMorph API
// @version     0.1.0
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in          header
// @name        Authorization
func main() {
	cfg := config.Load()
	log := logger.Configure(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, serviceName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger.Component("migration")); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token issuer")
	}

	userRepo := postgres.NewUserPostgres(db)
	fileRepo := postgres.NewFilePostgres(db)
	projectRepo := postgres.NewProjectPostgres(db)

	processor := service.NewProcessor(fileRepo, objStore, service.ProcessorConfig{
		StepDelay: cfg.Upload.ProcessingDelay,
	}, log)
	processor.Start(ctx)

	authSvc := service.NewAuthService(userRepo, tokens, logger.Component("auth"))
	fileSvc := service.NewFileService(objStore, fileRepo, userRepo, projectRepo, processor, cfg.Upload.MaxFileBytes, logger.Component("files"))
	projectSvc := service.NewProjectService(projectRepo, fileRepo, userRepo, objStore, logger.Component("projects"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    bodyLimit(cfg.Upload.MaxFileBytes),
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:             db,
		Auth:           authSvc,
		Files:          fileSvc,
		Projects:       projectSvc,
		Tokens:         tokens,
		MaxUploadBytes: cfg.Upload.MaxFileBytes,
		Gatherer:       reg,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Msg("api listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	stop()
	processor.Wait()
}
