package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/queueflow/queueflow-api/internal/config"
	"github.com/queueflow/queueflow-api/internal/email"
	"github.com/queueflow/queueflow-api/internal/handler"
	appointmentHandler "github.com/queueflow/queueflow-api/internal/handler/appointment"
	authHandler "github.com/queueflow/queueflow-api/internal/handler/auth"
	queueHandler "github.com/queueflow/queueflow-api/internal/handler/queue"
	userHandler "github.com/queueflow/queueflow-api/internal/handler/user"
	"github.com/queueflow/queueflow-api/internal/middleware"
	"github.com/queueflow/queueflow-api/internal/repository/postgres"
	"github.com/queueflow/queueflow-api/internal/router"
	appointmentService "github.com/queueflow/queueflow-api/internal/service/appointment"
	authService "github.com/queueflow/queueflow-api/internal/service/auth"
	eventService "github.com/queueflow/queueflow-api/internal/service/event"
	queueService "github.com/queueflow/queueflow-api/internal/service/queue"
	userService "github.com/queueflow/queueflow-api/internal/service/user"
	"github.com/queueflow/queueflow-api/pkg/auth"
	"github.com/queueflow/queueflow-api/pkg/logger"
	"github.com/queueflow/queueflow-api/pkg/metrics"
	"github.com/queueflow/queueflow-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	queueRepo := postgres.NewQueueRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.New("queueflow")

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	emailSvc := email.NewService(cfg.SMTP)
	eventSvc := eventService.NewService(outboxRepo, logg)

	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	userSvc := userService.NewService(userRepo, queueRepo)
	queueSvc := queueService.NewService(queueRepo, patientRepo, userRepo, eventSvc, m)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, userRepo, queueRepo, eventSvc, emailSvc, m, logg)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	userH := userHandler.NewHandler(userSvc)
	queueH := queueHandler.NewHandler(queueSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)

	r := router.NewRouter(authMiddleware, authH, userH, queueH, appointmentH, h, router.Config{
		RateLimit:     rate.Limit(cfg.RateLimit.RPS),
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    middleware.DefaultCORSConfig(),
		Timeout:       cfg.Server.RequestTimeout,
		MetricsPrefix: "queueflow_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
