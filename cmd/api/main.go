// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/database"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
	"github.com/kurtgav/wizardmatch-sub001/internal/config"
	"github.com/kurtgav/wizardmatch-sub001/internal/interest"
	"github.com/kurtgav/wizardmatch-sub001/internal/logger"
	"github.com/kurtgav/wizardmatch-sub001/internal/matching"
	"github.com/kurtgav/wizardmatch-sub001/internal/messaging"
	"github.com/kurtgav/wizardmatch-sub001/internal/notification"
	"github.com/kurtgav/wizardmatch-sub001/internal/profile"
	"github.com/kurtgav/wizardmatch-sub001/internal/survey"
)

var startTime = time.Now()

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg)
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file loaded", zap.Error(envErr))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration validation failed", zap.Error(err))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	if err := database.RunMigrations(ctx, db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("continuing without Redis", zap.Error(err))
		} else {
			defer redisClient.Close()
			log.Info("connected to Redis")
		}
	}

	clock := campaign.SystemClock()

	// Campaigns and the action gate
	campaignRepo := campaign.NewPostgresRepository(db)
	campaignService := campaign.NewService(campaignRepo, clock)

	// Survey
	surveyRepo := survey.NewPostgresRepository(db)
	surveyService := survey.NewService(surveyRepo, campaignService, clock)

	// Profiles
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo, campaignService)

	// Match generation
	matchRepo := matching.NewPostgresRepository(db)
	generator := matching.NewGenerator(
		campaignService,
		surveyRepo,
		matchRepo,
		buildLocker(cfg, redisClient, log),
		buildArchiver(cfg, log),
		clock,
		matching.GeneratorConfig{Workers: cfg.GenerationWorkers, MinScore: cfg.MinMatchScore},
		log,
	)
	matchingService := matching.NewService(matchRepo, campaignService, generator, clock, log)
	if cfg.AutoGenerate {
		go matching.NewScheduler(campaignService, generator, cfg.SchedulerInterval, log).Start(ctx)
	}

	// Notifications
	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}

	// Crush lists and swipes
	interestRepo := interest.NewPostgresRepository(db)
	reconciler := interest.NewReconciler(
		interestRepo,
		matchRepo,
		profileRepo,
		campaignService,
		notifier,
		clock,
		interest.Config{MaxCrushEntries: cfg.MaxCrushEntries},
		log,
	)

	// Messaging
	hub := messaging.NewHub(log)
	go hub.Run(ctx)
	messagingRepo := messaging.NewPostgresRepository(db)
	messagingService := messaging.NewService(
		messagingRepo,
		matchRepo,
		campaignService,
		hub,
		clock,
		messaging.Config{MaxMessageLength: cfg.MaxMessageLength},
		log,
	)

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, cfg)

	router := mux.NewRouter()
	router.Use(recoverMiddleware(log), loggingMiddleware(log), corsMiddleware(cfg))
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.HandleFunc("/health", healthCheck(db)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	campaign.RegisterRoutes(router, campaign.NewHandler(campaignService), authMiddleware)
	survey.RegisterRoutes(router, survey.NewHandler(surveyService, campaignService), authMiddleware)
	profile.RegisterRoutes(router, profile.NewHandler(profileService, campaignService), authMiddleware)
	matching.RegisterRoutes(router, matching.NewHandler(matchingService, campaignService), authMiddleware)
	interest.RegisterRoutes(router, interest.NewHandler(reconciler, campaignService), authMiddleware)
	messaging.RegisterRoutes(router, messaging.NewHandler(messagingService, hub, cfg.OriginAllowed, log), authMiddleware)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // admin generation runs inline
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// buildLocker guards generation in-process and, when Redis is available,
// across instances.
func buildLocker(cfg *config.Config, client *redis.Client, log *zap.Logger) matching.Locker {
	local := matching.NewLocalLocker()
	if client == nil {
		return local
	}
	return matching.ChainLocker{local, matching.NewRedisLocker(client, cfg.GenerationLockTTL, log)}
}

func buildArchiver(cfg *config.Config, log *zap.Logger) matching.Archiver {
	if !cfg.ArchiveGenerations {
		return matching.NoopArchiver()
	}
	archiver, err := matching.NewS3Archiver(cfg.AWSRegion, cfg.S3BucketName)
	if err != nil {
		log.Warn("generation archiving disabled", zap.Error(err))
		return matching.NoopArchiver()
	}
	log.Info("archiving generations to S3", zap.String("bucket", cfg.S3BucketName))
	return archiver
}

func buildNotifier(cfg *config.Config, log *zap.Logger) (*notification.Notifier, error) {
	var email notification.EmailService
	switch cfg.EmailProvider {
	case "sendgrid":
		svc, err := notification.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, log)
		if err != nil {
			return nil, err
		}
		email = svc
	case "smtp":
		svc, err := notification.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName, log)
		if err != nil {
			return nil, err
		}
		email = svc
	default:
		log.Warn("using mock email provider")
		email = notification.NewMockEmailService(log)
	}

	var sms notification.SMSService
	switch cfg.SMSProvider {
	case "twilio":
		svc, err := notification.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, log)
		if err != nil {
			return nil, err
		}
		sms = svc
	default:
		sms = notification.NewMockSMSService(log)
	}

	log.Info("notifications configured",
		zap.String("email_provider", cfg.EmailProvider),
		zap.String("sms_provider", cfg.SMSProvider),
	)
	return notification.NewNotifier(email, sms, log), nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// healthCheck returns server health status
func healthCheck(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		utils.RespondWithJSON(w, code, map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
		})
	}
}
