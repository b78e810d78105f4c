package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/config"
	"github.com/noah-isme/profileiq-api/internal/database"
	"github.com/noah-isme/profileiq-api/internal/handler"
	"github.com/noah-isme/profileiq-api/internal/middleware"
	"github.com/noah-isme/profileiq-api/internal/repository"
	"github.com/noah-isme/profileiq-api/internal/router"
	"github.com/noah-isme/profileiq-api/internal/service"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("event publishing disabled")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	evaluator, err := ai.NewEvaluator(ai.Config{
		Provider:    cfg.AIProvider,
		APIKey:      cfg.AIAPIKey(),
		Model:       cfg.AIModel,
		BaseURL:     cfg.AIBaseURL,
		MaxTokens:   cfg.AIMaxTokens,
		Temperature: cfg.AITemperature,
		Timeout:     cfg.AITimeout,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create evaluator: %v", err)
	}

	responseValidator, err := ai.NewResponseValidator()
	if err != nil {
		log.Fatalf("failed to compile response schema: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	noteRepo := repository.NewCounselorNoteRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	summaryCache := service.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, logger)

	evaluationService := service.NewEvaluationService(service.EvaluationDependencies{
		Users:       userRepo,
		Activities:  activityRepo,
		Notes:       noteRepo,
		Evaluations: evaluationRepo,
		Evaluator:   evaluator,
		Validator:   responseValidator,
		Audit:       auditService,
		Summary:     summaryCache,
		Publisher:   service.NewNATSPublisher(natsConn),
	}, logger)
	activityService := service.NewActivityService(activityRepo, validate, auditService, summaryCache, logger)
	profileService := service.NewProfileService(userRepo, activityRepo, evaluationRepo, validate, auditService, summaryCache, logger)
	counselorService := service.NewCounselorService(userRepo, activityRepo, evaluationRepo, noteRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  15 * time.Second,
		// Evaluations wait on the oracle.
		WriteTimeout: cfg.AITimeout + 15*time.Second,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		AllowedOrigins: cfg.CORSOrigins,
		AccessLog:      cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		StudentHandler:    handler.NewStudentHandler(profileService, logger),
		CounselorHandler:  handler.NewCounselorHandler(counselorService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		EvaluationLimiter: middleware.EvaluationRateLimit(middleware.RateLimitConfig{
			Max:     cfg.EvaluationRateLimit,
			Window:  cfg.EvaluationRateWindow,
			Storage: middleware.NewRedisStorage(redisClient, ""),
		}),
		HealthProbes: map[string]handler.HealthProbe{
			"postgres": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("ai_provider", cfg.AIProvider).Msg("starting server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
