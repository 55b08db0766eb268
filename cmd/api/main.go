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

	"go.uber.org/zap"

	"github.com/IANDYI/bloodpressure-service/internal/adapters/handler"
	"github.com/IANDYI/bloodpressure-service/internal/adapters/middleware"
	"github.com/IANDYI/bloodpressure-service/internal/adapters/repository"
	"github.com/IANDYI/bloodpressure-service/internal/config"
	"github.com/IANDYI/bloodpressure-service/internal/core/services"
	"github.com/IANDYI/bloodpressure-service/internal/logger"
)

const serviceName = "bloodpressure-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.ConnectDatabase(cfg.DatabaseURL, 5, 2*time.Second, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = config.InitDatabase(initCtx, db, log)
	initCancel()
	if err != nil {
		log.Fatal("failed to initialize database schema", zap.Error(err))
	}

	breaker := repository.BreakerSettings{
		MaxRequests: cfg.CircuitBreakerMaxRequests,
		Interval:    cfg.CircuitBreakerInterval,
		Timeout:     cfg.CircuitBreakerTimeout,
	}

	alertPublisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.AlertsQueueName, breaker, log)
	if err != nil {
		log.Fatal("failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer alertPublisher.Close()

	sqlRepo := repository.NewSQLRepository(db, breaker, log)

	readingService := services.NewReadingService(sqlRepo, alertPublisher, log)
	medicationService := services.NewMedicationService(sqlRepo, log)

	readingConsumer, err := repository.NewReadingConsumer(cfg.RabbitMQURL, cfg.SubmissionsQueueName, readingService, log)
	if err != nil {
		log.Fatal("failed to initialize RabbitMQ reading consumer", zap.Error(err))
	}
	defer readingConsumer.Close()

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if err := readingConsumer.StartConsuming(consumerCtx); err != nil {
		log.Error("reading consumer failed to start", zap.Error(err))
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey, log)
	defer authMiddleware.Stop()

	router := handler.NewRouter(
		handler.NewReadingHandler(readingService, cfg.Location, log),
		handler.NewMedicationHandler(medicationService, log),
		handler.NewHealthHandler(db, log),
		authMiddleware,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting blood pressure service",
			zap.String("port", cfg.Port), zap.String("timezone", cfg.Location.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Stop taking submissions before draining HTTP
	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
