// RoomSense Core - Meeting-Room Occupancy Scenarios
//
// This is the main entry point for the RoomSense Core application.
// RoomSense ingests camera occupancy detections over MQTT and drives
// meeting-room scenario workflows:
//   - Enter: prompt the room's conferencing endpoint when someone arrives
//   - Recording: ask for recording confirmation on arrival
//   - Warn: nudge attendees who linger too far from the table mid-meeting
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/roomsense/roomsense-core/migrations"

	"github.com/roomsense/roomsense-core/internal/api"
	"github.com/roomsense/roomsense-core/internal/dispatch"
	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/database"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
	"github.com/roomsense/roomsense-core/internal/infrastructure/mqtt"
	"github.com/roomsense/roomsense-core/internal/lookup"
	"github.com/roomsense/roomsense-core/internal/occupancy"
	"github.com/roomsense/roomsense-core/internal/scenario"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting RoomSense Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the scenario core: topology, tracker, lookup chain, dispatch,
	// state aggregate, execution log, engine.
	topology := occupancy.NewTopology(cfg.Cameras)
	tracker := occupancy.NewTracker()
	log.Info("camera topology loaded",
		"cameras", len(cfg.Cameras),
		"zones", topology.ZoneCount(),
	)

	resolver := lookup.NewClient(cfg.Cloud, log)

	endpointClient := dispatch.NewEndpointClient(cfg.Endpoint, log)
	botClient := dispatch.NewBotClient(cfg.Bot, log)
	notifier := dispatch.NewDispatcher(endpointClient, botClient)

	state := scenario.NewState(cfg.Scenario)
	execRepo := scenario.NewSQLiteRepository(db.DB)
	engine := scenario.NewEngine(tracker, topology, resolver, notifier, state, execRepo, log)
	log.Info("scenario engine initialised",
		"enter_enabled", cfg.Scenario.EnterEnabled,
		"warn_enabled", cfg.Scenario.WarnEnabled,
		"recording_enabled", cfg.Scenario.RecordingEnabled,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Subscribe to each configured camera's detection stream. The wrapper
	// restores these subscriptions automatically after a reconnect.
	if err := subscribeDetections(mqttClient, topology, engine, byte(cfg.MQTT.QoS), log); err != nil {
		return fmt.Errorf("subscribing to detections: %w", err)
	}

	// Start the HTTP command server
	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Engine:    engine,
		State:     state,
		Topology:  topology,
		ExecRepo:  execRepo,
		Snapshots: resolver,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. MQTT
	// 3. Database

	log.Info("RoomSense Core stopped")
	return nil
}

// subscribeDetections subscribes to the raw detection stream of every
// configured camera and routes messages into the scenario engine. The sensor
// path is fire-and-forget: handler errors are logged, never surfaced.
func subscribeDetections(client *mqtt.Client, topology *occupancy.Topology, engine *scenario.Engine, qos byte, log *logging.Logger) error {
	for _, serial := range topology.Serials() {
		topic := mqtt.Topics{}.CameraDetections(serial)
		err := client.Subscribe(topic, qos, func(topic string, payload []byte) error {
			serial, zoneID, ok := mqtt.ParseDetectionTopic(topic)
			if !ok {
				log.Warn("unparseable detection topic", "topic", topic)
				return nil
			}
			if err := engine.HandleMessage(context.Background(), serial, zoneID, payload); err != nil {
				log.Warn("detection dropped", "topic", topic, "error", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		log.Info("subscribed to camera detections", "serial", serial, "topic", topic)
	}
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ROOMSENSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ROOMSENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - apiServer: API server to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, apiServer *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
