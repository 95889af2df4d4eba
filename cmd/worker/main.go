package main

import (
	"encoding/json"
	"os"

	"vaultcontrol/internal/handlers"
	"vaultcontrol/pkg/config"
	"vaultcontrol/schedule"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database (optional)
	if os.Getenv("DB_HOST") != "" {
		config.InitDB()
		logrus.Info("Database initialized")
	} else {
		logrus.Info("Database not configured, snapshots disabled")
	}

	// Initialize RabbitMQ (optional, cron-only mode without it)
	var publisher *config.Publisher
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer config.RabbitMQ.Close()

		var err error
		publisher, err = config.NewPublisher()
		if err != nil {
			logrus.Fatal("Create publisher failed: ", err)
		}
		defer publisher.Close()
	}

	// Build the engine instance this worker operates on
	app, err := handlers.BootstrapFromEnv(publisher, nil)
	if err != nil {
		logrus.Fatal("Failed to bootstrap vault engine: ", err)
	}

	// Schedule periodic harvests and snapshots
	c := cron.New(cron.WithSeconds())

	harvestExpr := os.Getenv("HARVEST_CRON")
	if harvestExpr == "" {
		harvestExpr = "0 */10 * * * *"
	}
	if _, err := c.AddFunc(harvestExpr, func() {
		schedule.HarvestAll(app)
	}); err != nil {
		logrus.Fatal("Failed to schedule harvest task: ", err)
	}

	snapshotExpr := os.Getenv("SNAPSHOT_CRON")
	if snapshotExpr == "" {
		snapshotExpr = "0 */15 * * * *"
	}
	if _, err := c.AddFunc(snapshotExpr, func() {
		if err := schedule.RecordSnapshot(app); err != nil {
			logrus.Errorf("Failed to record snapshot: %v", err)
		}
	}); err != nil {
		logrus.Fatal("Failed to schedule snapshot task: ", err)
	}

	c.Start()
	logrus.Infof("Worker started, harvest=%q snapshot=%q", harvestExpr, snapshotExpr)

	// Consume on-demand harvest requests when the queue is configured
	if config.RabbitMQ != nil {
		msgConsumer, err := config.NewConsumer(config.QueueHarvestRequests)
		if err != nil {
			logrus.Fatal("Failed to create consumer: ", err)
		}
		defer msgConsumer.Close()

		err = msgConsumer.Consume(func(msg []byte) error {
			var req config.HarvestRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				logrus.Errorf("Failed to unmarshal harvest request: %v", err)
				return err
			}
			logrus.Infof("Received harvest request for strategy %s", req.StrategyAddress)
			return schedule.HarvestOne(app, req.StrategyAddress)
		})
		if err != nil {
			logrus.Fatal("Failed to start consumer: ", err)
		}
		return
	}

	// Cron-only mode
	select {}
}
