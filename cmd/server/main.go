// Command main is the entry point for the Strive backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"strive/internal/config"
	"strive/internal/middleware"
	"strive/internal/observability"
	"strive/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.InitMiddleware(cfg)

	// Tracing is opt-in via OTEL_ENABLED
	samplerRatio := 1.0
	if v := os.Getenv("OTEL_SAMPLER_RATIO"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			samplerRatio = parsed
		}
	}
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "strive-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
		Exporter:       os.Getenv("OTEL_EXPORTER"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SamplerRatio:   samplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Strive API",
		BodyLimit: 10 * 1024 * 1024, // 10MB limit
	})

	// Setup middleware and routes
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Start the Redis -> WebSocket notification relay
	wiringCtx, cancelWiring := context.WithCancel(context.Background())
	defer cancelWiring()
	if err := srv.StartWiring(wiringCtx); err != nil {
		log.Printf("Notification relay unavailable: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		cancelWiring()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		// Shutdown server resources
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
