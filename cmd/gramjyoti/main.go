// Gram Jyoti Core - community microgrid load control.
//
// The core owns the site's controllable loads (street lights, pumps,
// community buildings), serves the operator dashboard and REST API, and
// optionally bridges to an MQTT broker, InfluxDB and a local SQLite event
// journal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gramjyoti/microgrid-core/internal/api"
	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/i18n"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/database"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/influxdb"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/logging"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/mqtt"
	"github.com/gramjyoti/microgrid-core/internal/journal"
	"github.com/gramjyoti/microgrid-core/internal/metrics"
	"github.com/gramjyoti/microgrid-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// journalPruneInterval is how often expired journal rows are removed.
	journalPruneInterval = time.Hour
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gram Jyoti Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, source, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version, cfg.Site.ID)
	log.Info("configuration loaded", "source", source, "site", cfg.Site.Name)

	lang, err := i18n.ParseLanguage(cfg.Loads.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("loads.default_language: %w", err)
	}

	// Device registry
	defs, err := loadDefinitions(cfg.Loads.File)
	if err != nil {
		return fmt.Errorf("loading load definitions: %w", err)
	}
	registry, err := device.NewRegistry(defs)
	if err != nil {
		return fmt.Errorf("creating load registry: %w", err)
	}
	registry.SetLogger(log.Component("registry"))
	log.Info("load registry initialised", "loads", registry.Len(), "file", cfg.Loads.File)

	ctrl := control.New(registry, control.Options{
		Latency:  cfg.GetToggleLatency(),
		Logger:   log.Component("control"),
		Notifier: control.NewLogNotifier(log.Component("events"), lang),
	})

	// Event journal (optional)
	var db *database.DB
	var eventJournal *journal.Journal
	if cfg.Journal.Enabled {
		db, err = openDatabase(ctx, cfg.Database, migrations.FS)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", cfg.Database.Path)

		eventJournal = journal.New(db.DB)
		ctrl.AddNotifier(eventJournal)
		go eventJournal.RunPruner(ctx, cfg.GetJournalRetention(), journalPruneInterval, log.Component("journal"))
	} else {
		log.Info("event journal disabled")
	}

	// Prometheus
	promRegistry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		collector := metrics.NewLoadCollector(ctrl, cfg.Site.ID)
		promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collector,
		)
		ctrl.AddNotifier(collector)
	}

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		// Registered first so it runs after the client is closed and no
		// further commands can arrive.
		commands := control.NewCommandHandler(ctx, ctrl, log.Component("commands"))
		defer commands.Wait()

		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.Component("mqtt"))
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

		qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0-2
		ctrl.AddNotifier(control.NewMQTTNotifier(mqttClient, qos, ctrl.Snapshot))

		if subErr := commands.Subscribe(mqttClient, qos); subErr != nil {
			return fmt.Errorf("subscribing to commands: %w", subErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		ctrl.AddNotifier(control.NewMetricsNotifier(influxClient, cfg.Site.ID))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	// REST API, WebSocket and dashboard
	srv, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Metrics:    cfg.Metrics,
		Logger:     log.Component("api"),
		Controller: ctrl,
		Journal:    eventJournal,
		MQTT:       mqttClient,
		InfluxDB:   influxClient,
		DB:         db,
		Gatherer:   promRegistry,
		PanelDir:   os.Getenv(config.EnvPrefix + "PANEL_DIR"),
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	ctrl.AddNotifier(srv.Hub())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// loadConfig reads the file named by GRAMJYOTI_CONFIG, or the default
// path. A missing default file falls back to built-in settings; a missing
// file named explicitly is an error.
func loadConfig() (*config.Config, string, error) {
	path, explicit := getConfigPath()

	cfg, err := config.Load(path)
	if err == nil {
		return cfg, path, nil
	}
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}

	cfg, err = config.Default()
	if err != nil {
		return nil, "", err
	}
	return cfg, "defaults", nil
}

func getConfigPath() (string, bool) {
	if path := os.Getenv(config.EnvPrefix + "CONFIG"); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

func loadDefinitions(path string) ([]device.Definition, error) {
	if path == "" {
		return device.DefaultDefinitions(), nil
	}
	return device.LoadDefinitions(path)
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, source fs.FS) (*database.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, source); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
