package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes/internal/config"
	"notes/internal/database"
	"notes/internal/services"
	"notes/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

const auditQueue = "notes_audit_queue"

func main() {
	// --- Configuration ---
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// --- Store ---
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)
	log.Printf("Database connected (%s)", cfg.StoreDriver)

	// --- Domain events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: services.EventsExchange,
			Queue:    auditQueue,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		}()
		events = mqClient

		if err := mqClient.ConsumeEvents(auditEvent); err != nil {
			log.Printf("Failed to start audit consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL is not set, domain events are disabled")
	}

	app := newApp(cfg, db, tokens, events)

	// --- Start HTTP Server ---
	go func() {
		log.Printf("Starting server on %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// In-flight requests get until the timeout; the deferred closers then
	// release the broker and the store.
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// auditEvent logs one domain event from the audit queue.
func auditEvent(msg amqp.Delivery) error {
	var event services.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("malformed event: %w", err)
	}
	if event.Event == "" {
		return fmt.Errorf("event without name (routing key %s)", msg.RoutingKey)
	}
	log.Printf("Audit: %s id=%s user=%s at=%s", event.Event, event.ID, event.UserID, event.At.Format(time.RFC3339))
	return nil
}
