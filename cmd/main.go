package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "tenant-onboarding/docs"
	"tenant-onboarding/internal/api"
	"tenant-onboarding/internal/auth"
	"tenant-onboarding/internal/config"
	"tenant-onboarding/internal/identity"
	"tenant-onboarding/internal/messaging"
	"tenant-onboarding/internal/metrics"
	"tenant-onboarding/internal/orchestrator"
	"tenant-onboarding/internal/storage"
	"tenant-onboarding/internal/tier"
)

// @title Tenant Onboarding API
// @version 1.0
// @description API for multi-tenant SaaS onboarding and tier-based identity provisioning
// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// Init Metrics
	metrics.Init()

	// Load Configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded")

	// Setup JWT Secret
	auth.SetSecret(cfg.Auth.JWTSecret)

	// Init PostgreSQL
	db, err := storage.NewStorage(cfg.Database.URL, cfg.Onboarding.Table)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.DB.Close()
	log.Println("PostgreSQL connected")

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	if err := db.EnsureSchema(bootCtx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Init Identity Pool Registry and the shared free-tier pool
	registry := identity.NewRegistry(db.DB)
	if err := registry.EnsureSchema(bootCtx); err != nil {
		log.Fatalf("Failed to ensure registry schema: %v", err)
	}
	if err := registry.EnsureSharedPool(bootCtx, cfg.Onboarding.SharedPoolID); err != nil {
		log.Fatalf("Failed to ensure shared pool: %v", err)
	}
	log.Printf("Shared free-tier pool ready (%s)", cfg.Onboarding.SharedPoolID)

	// Init RabbitMQ
	rabbitClient, err := messaging.NewRabbitClient(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitClient.Close()
	log.Println("RabbitMQ connected")

	if err := rabbitClient.DeclareOnboardingQueue(); err != nil {
		log.Fatalf("Failed to declare onboarding queue: %v", err)
	}

	// Init Tier Decision Engine and the onboarding workflow
	engine := tier.NewEngine(db, registry, cfg.Onboarding.SharedPoolID)
	orch, err := orchestrator.Start(rabbitClient.GetConnection(), engine, cfg.Workers)
	if err != nil {
		log.Fatalf("Failed to start onboarding workflow: %v", err)
	}

	// Start background loop for updating queue depth metrics
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rabbitClient.UpdateQueueDepth()
			}
		}
	}()

	// Init API
	apiHandler := api.NewAPI(db, db, rabbitClient, orch, cfg)
	server := &http.Server{
		Addr:    ":8080",
		Handler: apiHandler.Router(),
	}

	// Graceful Shutdown Setup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("🚀 Starting API server on port 8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done() // Wait for interrupt signal
	log.Println("Shutdown initiated...")

	// Shutdown sequence
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	// Stop the onboarding workflow
	orch.Stop()

	log.Println("Graceful shutdown complete")
}
