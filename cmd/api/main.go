package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebookinghq/booking-api/config"
	appointmentHandler "github.com/ebookinghq/booking-api/internal/handler/appointment"
	availabilityHandler "github.com/ebookinghq/booking-api/internal/handler/availability"
	catalogHandler "github.com/ebookinghq/booking-api/internal/handler/catalog"
	healthHandler "github.com/ebookinghq/booking-api/internal/handler/health"
	"github.com/ebookinghq/booking-api/internal/lock"
	"github.com/ebookinghq/booking-api/internal/middleware"
	"github.com/ebookinghq/booking-api/internal/notification"
	"github.com/ebookinghq/booking-api/internal/repository/postgres"
	"github.com/ebookinghq/booking-api/internal/router"
	availabilityService "github.com/ebookinghq/booking-api/internal/service/availability"
	bookingService "github.com/ebookinghq/booking-api/internal/service/booking"
	catalogService "github.com/ebookinghq/booking-api/internal/service/catalog"
	eventService "github.com/ebookinghq/booking-api/internal/service/event"
	"github.com/ebookinghq/booking-api/migrations"
	"github.com/ebookinghq/booking-api/pkg/auth"
	"github.com/ebookinghq/booking-api/pkg/logger"
	"github.com/ebookinghq/booking-api/pkg/messaging/redis"
	"github.com/ebookinghq/booking-api/pkg/metrics"
	"github.com/ebookinghq/booking-api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Up(context.Background(), db); err != nil {
		log.Fatal(err, "failed to apply migrations")
	}

	// Repositories
	windowRepo := postgres.NewWindowRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	providerRepo := postgres.NewProviderRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	m := metrics.NewMetrics("booking_api")
	locks := lock.NewProviderLocks()
	eventSvc := eventService.NewService(outboxRepo)
	availabilitySvc := availabilityService.NewService(windowRepo, appointmentRepo, providerRepo, serviceRepo, locks, log, m)
	bookingSvc := bookingService.NewService(appointmentRepo, windowRepo, providerRepo, serviceRepo, eventSvc, locks, log, m)
	catalogSvc := catalogService.NewService(providerRepo, serviceRepo, log)

	// Middleware + handlers
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	appointmentH := appointmentHandler.NewHandler(bookingSvc)
	catalogH := catalogHandler.NewHandler(catalogSvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(authMiddleware, healthH, availabilityH, appointmentH, catalogH, router.Config{
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		Timeout:        cfg.Server.RequestTimeout,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "booking_api",
	})
	r.Setup()

	// Outbox pipeline: redis broker + email notifier
	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	notifier := notification.NewEmailSender(cfg.SMTP.ToSenderConfig(), log)

	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, notifier, cfg.Outbox.ToWorkerConfig(), log, m)
	go outboxProcessor.Start(processorCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()
	log.Info(fmt.Sprintf("server listening on :%d", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
