package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Karoll-esc/hotel-booking-system/config"
	"github.com/Karoll-esc/hotel-booking-system/controllers"
	"github.com/Karoll-esc/hotel-booking-system/gateways"
	"github.com/Karoll-esc/hotel-booking-system/repositories"
	"github.com/Karoll-esc/hotel-booking-system/routes"
	"github.com/Karoll-esc/hotel-booking-system/services"
	"github.com/Karoll-esc/hotel-booking-system/utils"
)

const serviceName = "hotel-booking"

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}
	cfg := config.Load()

	// Ship logs to Loki as well when configured
	if loki := utils.NewLokiWriter(cfg.LokiURL, serviceName); loki != nil {
		log.SetOutput(io.MultiWriter(os.Stderr, loki))
		defer loki.Close()
		log.Println("✅ Log shipping to Loki enabled.")
	}

	shutdownTracing := config.InitTracing(serviceName, cfg.OTLPEndpoint)
	if shutdownTracing != nil {
		log.Println("✅ Tracing enabled.")
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Printf("✅ Database connection established (%s) and migrations applied.", cfg.DBDriver)

	store := repositories.NewGormStore(db)
	checks := []routes.HealthCheck{{Name: "database", Ping: store.Ping}}

	// Idempotency keys live in redis when available, otherwise in process
	var idempotency gateways.IdempotencyGateway
	if rdb := config.ConnectRedis(cfg.RedisAddr); rdb != nil {
		defer rdb.Close()
		idempotency = gateways.NewIdempotencyGatewayRedis(rdb, cfg.IdempotencyTTL)
		checks = append(checks, routes.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		idempotency = gateways.NewIdempotencyGatewayMemory(cfg.IdempotencyTTL)
		checks = append(checks, routes.HealthCheck{Name: "redis"})
	}

	var publisher services.EventPublisher = gateways.LogPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := gateways.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("⚠️  RabbitMQ unavailable, lifecycle events will only be logged: %v", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			log.Printf("✅ Publishing lifecycle events to exchange %s.", cfg.AMQPExchange)
		}
	}

	if err := controllers.RegisterValidators(); err != nil {
		log.Fatalf("❌ Registering validators failed: %v", err)
	}

	// Initialize services
	clock := services.NewSystemClock(cfg.Location)
	checker := services.NewAvailabilityChecker(cfg.MaxStayNights)
	guestService := services.NewGuestService(store)
	roomService := services.NewRoomService(store, checker, clock)
	reservationService := services.NewReservationService(store, checker, guestService, clock, publisher)

	// Initialize controllers
	reservationController := controllers.NewReservationController(reservationService)
	roomController := controllers.NewRoomController(roomService)
	guestController := controllers.NewGuestController(guestService)

	// Build router
	router := routes.SetupRouter(reservationController, roomController, guestController, idempotency, checks...)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s (hotel timezone %s)", addr, cfg.Location)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("⚠️  Tracing shutdown: %v", err)
		}
	}

	log.Println("✅ Server stopped gracefully")
}
