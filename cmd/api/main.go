package main

import (
	"log"
	"os"

	"vaultcontrol/internal/handlers"
	"vaultcontrol/internal/routes"
	"vaultcontrol/pkg/config"
	"vaultcontrol/pkg/stream"
)

func main() {
	// Initialize database (optional, persistence degrades to no-op without it)
	if os.Getenv("DB_HOST") != "" {
		config.InitDB()
		config.ExecuteMigrations()
		log.Println("Database initialized successfully")
	} else {
		log.Println("Database not configured, skipping initialization")
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	var publisher *config.Publisher
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()

		var err error
		publisher, err = config.NewPublisher()
		if err != nil {
			log.Fatal("Create publisher failed:", err)
		}
		defer publisher.Close()
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Build the engine instance
	hub := stream.NewHub()
	if _, err := handlers.BootstrapFromEnv(publisher, hub); err != nil {
		log.Fatal("Failed to bootstrap vault engine:", err)
	}

	// Set up router
	r := routes.SetupRouter(hub)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
