package main

import (
	"database/sql"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"stayshare/config"
	"stayshare/internal/adapters/auth"
	"stayshare/internal/adapters/email"
	delivery "stayshare/internal/delivery/http"
	"stayshare/internal/delivery/http/controllers"
	"stayshare/internal/delivery/http/middleware"
	"stayshare/internal/repository/postgres"
	"stayshare/internal/services"
)

const bcryptCost = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	hostRepo := postgres.NewHostRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	connectionRepo := postgres.NewConnectionRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccess,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	clock := services.NewClock()
	hasher := auth.NewBcryptHasher(bcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	authSvc := services.NewAuthService(userRepo, hasher, issuer, clock)
	availabilitySvc := services.NewAvailabilityService(availabilityRepo, clock)
	bookingSvc := services.NewBookingService(bookingRepo, hostRepo, clock)
	connectionSvc := services.NewConnectionService(connectionRepo, userRepo, clock)
	invitationSvc := services.NewInvitationService(invitationRepo, userRepo, connectionSvc, emailSvc, clock)

	mux := delivery.NewRouter(
		logger,
		verifier,
		controllers.NewAuthController(logger, authSvc),
		controllers.NewAvailabilityController(logger, availabilitySvc, hostRepo),
		controllers.NewBookingController(logger, bookingSvc),
		controllers.NewConnectionController(logger, connectionSvc),
		controllers.NewInvitationController(logger, invitationSvc),
	)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
