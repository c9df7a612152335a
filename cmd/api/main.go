package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"smartstudy/docs"
	"smartstudy/internal/auth"
	"smartstudy/internal/config"
	"smartstudy/internal/database"
	"smartstudy/internal/database/migration"
	"smartstudy/internal/errreport"
	handlers "smartstudy/internal/http/handler"
	"smartstudy/internal/http/middleware"
	"smartstudy/internal/logger"
	"smartstudy/internal/mail"
	"smartstudy/internal/model"
	"smartstudy/internal/otel"
	"smartstudy/internal/predictor"
	"smartstudy/internal/repository/postgres"
	"smartstudy/internal/service"
	"smartstudy/internal/storage"
	"smartstudy/internal/validation"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title SmartStudy API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	sqlDB, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer sqlDB.Close()

	if err := migration.EnsureMigrated(ctx, sqlDB, log, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	db := database.WithSQLX(sqlDB)

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	reporter := errreport.NewRollbar(cfg.RollbarToken, cfg.Env, version)
	defer errreport.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, cfg.Database.Name),
	)

	svcs, guard, err := buildServices(cfg, db, objStore, registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}

	metrics, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		AppName:      "smartstudy",
		ErrorHandler: handlers.ErrorHandler(log, reporter),
		BodyLimit:    cfg.Upload.MaxBytes,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())
	app.Use(middleware.CORS(cfg.CORS))
	app.Use(cfg.APIBasePath, middleware.Maintenance(svcs.Settings, guard, cfg.APIBasePath+"/users/login"))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		docs.SwaggerInfo.BasePath = cfg.APIBasePath

		return swagger.HandlerDefault(c)
	})

	presignTTL := time.Duration(0)
	if cfg.Upload.Presign {
		presignTTL = cfg.Upload.PresignTTL
	}
	handlers.RegisterRoutes(app, handlers.Deps{
		DB:          sqlDB,
		Store:       objStore,
		Guard:       guard,
		APIBasePath: cfg.APIBasePath,
		PresignTTL:  presignTTL,
		Services:    svcs,
	})

	addr := ":" + cfg.Port
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("version", version).Msg("server_starting")
		serveErr <- app.Listen(addr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown_requested")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
}

// buildServices assembles repositories and services and the auth guard that depends on them.
func buildServices(
	cfg *config.AppConfig,
	db *sqlx.DB,
	store storage.Storage,
	reg prometheus.Registerer,
	log zerolog.Logger,
) (handlers.Services, *middleware.AuthGuard, error) {
	v := validation.New()
	policy := service.DeletePolicy(cfg.DeletePolicy)

	userRepo := postgres.NewUserPostgres(db)
	departmentRepo := postgres.NewDepartmentPostgres(db)
	subjectRepo := postgres.NewSubjectPostgres(db)
	materialRepo := postgres.NewMaterialPostgres(db)

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	settingsSvc := service.NewSettingsService(postgres.NewSettingsPostgres(db), v)
	userSvc := service.NewUserService(userRepo, settingsSvc, tokens, v)

	var roles middleware.RoleResolver
	if cfg.Auth.RevalidateRole {
		roles = userSvc
	}
	guard := middleware.NewAuthGuard(tokens, roles)

	siteName := model.DefaultSettings().SiteName
	mailer := mail.New(cfg.Mail.SendGridAPIKey, siteName, cfg.Mail.From, log)

	runner, err := predictor.NewInstrumentedRunner(
		predictor.NewProcessRunner(cfg.Predictor.Command, cfg.Predictor.Script),
		reg,
	)
	if err != nil {
		return handlers.Services{}, nil, err
	}

	material := func(kind model.MaterialKind) service.MaterialService {
		return service.NewMaterialService(kind, materialRepo, subjectRepo, store, v, log)
	}

	return handlers.Services{
		Users:       userSvc,
		Departments: service.NewDepartmentService(departmentRepo, subjectRepo, materialRepo, store, policy, v, log),
		Subjects:    service.NewSubjectService(subjectRepo, departmentRepo, materialRepo, store, policy, v, log),
		Notes:       material(model.KindNotes),
		PYQs:        material(model.KindPYQ),
		Syllabus:    material(model.KindSyllabus),
		Settings:    settingsSvc,
		Subscribers: service.NewSubscriberService(postgres.NewSubscriberPostgres(db), mailer, siteName, v, log),
		Admin:       service.NewAdminService(postgres.NewStatsPostgres(db)),
		Predict:     service.NewPredictService(runner, cfg.Predictor.Timeout, v, log),
	}, guard, nil
}
