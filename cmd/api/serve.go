package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medihelp-api/internal/email"
	"github.com/jwalitptl/medihelp-api/internal/handler"
	assistantHandler "github.com/jwalitptl/medihelp-api/internal/handler/assistant"
	authHandler "github.com/jwalitptl/medihelp-api/internal/handler/auth"
	doseHandler "github.com/jwalitptl/medihelp-api/internal/handler/dose"
	fileHandler "github.com/jwalitptl/medihelp-api/internal/handler/file"
	healthMetricHandler "github.com/jwalitptl/medihelp-api/internal/handler/healthmetric"
	medicineHandler "github.com/jwalitptl/medihelp-api/internal/handler/medicine"
	profileHandler "github.com/jwalitptl/medihelp-api/internal/handler/profile"
	promHandler "github.com/jwalitptl/medihelp-api/internal/handler/prometheus"
	relationshipHandler "github.com/jwalitptl/medihelp-api/internal/handler/relationship"
	"github.com/jwalitptl/medihelp-api/internal/middleware"
	"github.com/jwalitptl/medihelp-api/internal/repository/postgres"
	"github.com/jwalitptl/medihelp-api/internal/router"
	"github.com/jwalitptl/medihelp-api/internal/service/access"
	"github.com/jwalitptl/medihelp-api/internal/service/assistant"
	authService "github.com/jwalitptl/medihelp-api/internal/service/auth"
	"github.com/jwalitptl/medihelp-api/internal/service/dose"
	eventService "github.com/jwalitptl/medihelp-api/internal/service/event"
	"github.com/jwalitptl/medihelp-api/internal/service/file"
	"github.com/jwalitptl/medihelp-api/internal/service/healthmetric"
	"github.com/jwalitptl/medihelp-api/internal/service/medicine"
	"github.com/jwalitptl/medihelp-api/internal/service/profile"
	"github.com/jwalitptl/medihelp-api/internal/service/relationship"
	"github.com/jwalitptl/medihelp-api/pkg/ai"
	"github.com/jwalitptl/medihelp-api/pkg/auth"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
	"github.com/jwalitptl/medihelp-api/pkg/metrics"
	"github.com/jwalitptl/medihelp-api/pkg/openfda"
	"github.com/jwalitptl/medihelp-api/pkg/security"
)

func runServe(configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New("medihelp", registry)

	repos := postgres.NewRepositories(db)
	events := eventService.NewService(repos.Outbox, appLogger)
	mailer := email.NewService(cfg.SMTP)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL(), cfg.JWT.Issuer)
	generator := ai.NewClient(cfg.ToAIConfig(), &log.Logger, appMetrics)
	labels := openfda.NewClient(cfg.OpenFDA.BaseURL, cfg.OpenFDA.Timeout, cfg.OpenFDA.CacheTTL)
	resolver := access.NewService(repos.UserMedicines, repos.Relationships)

	authSvc := authService.NewService(repos.Users, jwtSvc, security.NewBcryptHasher(0), mailer, appLogger)
	profileSvc := profile.NewService(repos.Profiles)
	medicineSvc := medicine.NewService(repos.Medicines, repos.UserMedicines, resolver, labels, events)
	doseSvc := dose.NewService(repos.Doses, resolver, events)
	relationshipSvc := relationship.NewService(repos.Relationships, repos.Profiles, mailer, events, appLogger)
	healthMetricSvc := healthmetric.NewService(repos.HealthMetrics)
	fileSvc := file.NewService(repos.Files, file.NewHTTPDownloader(cfg.Download.Timeout), generator, events, appLogger, appMetrics)
	assistantSvc := assistant.NewService(repos.Medicines, repos.ChatHistories, generator, appLogger)

	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	corsConfig.AllowMethods = cfg.Security.AllowedMethods
	corsConfig.AllowHeaders = cfg.Security.AllowedHeaders

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		router.Handlers{
			Health: handler.NewHandler(db, registry),
			Auth:   authHandler.NewHandler(authSvc),
			Protected: []router.Handler{
				profileHandler.NewHandler(profileSvc),
				medicineHandler.NewHandler(medicineSvc),
				doseHandler.NewHandler(doseSvc),
				relationshipHandler.NewHandler(relationshipSvc),
				healthMetricHandler.NewHandler(healthMetricSvc),
				fileHandler.NewHandler(fileSvc),
				assistantHandler.NewHandler(assistantSvc),
			},
		},
		promHandler.New(registry),
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			CORSConfig:       corsConfig,
			Production:       cfg.IsProduction(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Environment).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
