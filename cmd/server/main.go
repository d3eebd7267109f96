package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"speakermarket/config"
	authadapter "speakermarket/internal/adapters/auth"
	emailadapter "speakermarket/internal/adapters/email"
	delivery "speakermarket/internal/delivery/http"
	"speakermarket/internal/delivery/http/controllers"
	"speakermarket/internal/delivery/http/middleware"
	"speakermarket/internal/repository/postgres"
	"speakermarket/internal/services"
)

const (
	contextTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	bcryptCost      = 10
)

// @title Speaker Market API
// @version 1.0
// @description Marketplace API connecting event organizers with speakers: events, applications, invitations, bookings, and speaker statistics.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	speakerRepo := postgres.NewSpeakerRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	topicRepo := postgres.NewTopicRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	historyRepo := postgres.NewStatusHistoryRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(bcryptCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	notifier := services.NewNotifier(notificationRepo, profileRepo, emailService, logger)
	authService := services.NewAuthService(userRepo, profileRepo, hasher, issuer, cfg.TokenExpiry, contextTimeout)
	profileService := services.NewProfileService(profileRepo, speakerRepo, contextTimeout)
	eventService := services.NewEventService(eventRepo, topicRepo, profileRepo, historyRepo, contextTimeout)
	statsService := services.NewStatsService(speakerRepo, bookingRepo, eventRepo, statsRepo, contextTimeout)
	bookingService := services.NewBookingService(bookingRepo, eventRepo, speakerRepo, profileRepo, historyRepo, statsService, notifier, contextTimeout)
	invitationService := services.NewInvitationService(invitationRepo, eventRepo, speakerRepo, profileRepo, historyRepo, notifier, contextTimeout)
	notificationService := services.NewNotificationService(notificationRepo, profileRepo, contextTimeout)

	// HTTP layer
	mux := delivery.NewRouter(delivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		Profile:      controllers.NewProfileController(logger, profileService),
		Event:        controllers.NewEventController(logger, eventService),
		Booking:      controllers.NewBookingController(logger, bookingService),
		Invitation:   controllers.NewInvitationController(logger, invitationService),
		Notification: controllers.NewNotificationController(logger, notificationService),
		Stats:        controllers.NewStatsController(logger, statsService),
		Admin:        controllers.NewAdminController(logger, bookingService, invitationService, statsService),
	}, verifier, logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
