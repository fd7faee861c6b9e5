package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sembako/internal/config"
	"sembako/internal/database"
	"sembako/internal/metrics"
	"sembako/internal/server"
	"sembako/internal/services"
	"sembako/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sembako",
		Short:        "Sembako store API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed and run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Migrate the database, load the demo data and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	})
	return root
}

// openDatabase loads the configuration and returns a migrated database.
func openDatabase() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return cfg, db, nil
}

func runSeed(ctx context.Context) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := server.New(cfg, db, nil, nil).Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	log.Println("Database seeded")
	return nil
}

func runServe(ctx context.Context) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, transaction events disabled: %v", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumeTransactionEvents(logTransactionEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
	}

	srv := server.New(cfg, db, publisher, metrics.New("sembako"))
	if cfg.SeedData {
		if err := srv.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		listenErr <- srv.App.Listen(cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := srv.App.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

// logTransactionEvent is the consumer side of the transaction queue. It only
// logs; malformed bodies are rejected so they are not redelivered forever.
func logTransactionEvent(msg amqp.Delivery) error {
	var event services.TransactionCompletedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Dropping malformed %q message: %v", msg.Type, err)
		return nil
	}
	log.Printf("Received %s: transaction %d for user %d, total %s (%d items)",
		event.EventType, event.TransactionID, event.UserID, event.TotalAmount.StringFixed(2), event.ItemCount)
	return nil
}
