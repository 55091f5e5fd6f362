package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/printforge/fleet/pkg/api"
	"github.com/printforge/fleet/pkg/auth"
	"github.com/printforge/fleet/pkg/logging"
	"github.com/printforge/fleet/pkg/metrics"
	"github.com/printforge/fleet/pkg/ratelimit"
	"github.com/printforge/fleet/pkg/shutdown"
	"github.com/printforge/fleet/pkg/store"
	"github.com/printforge/fleet/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "Override API port")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewFileLogger(cfg.Logging.LogDir, "fleetd", logging.ParseLevel(cfg.Logging.Level), cfg.Logging.JSON)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	defer logger.Close()

	db, err := store.New(store.Config{Type: cfg.Database.Type, DSN: cfg.Database.DSN})
	if err != nil {
		logger.Fatal("Failed to open store", map[string]interface{}{"error": err.Error()})
	}

	hub := telemetry.NewHub(logger)
	server := api.NewServer(db, hub, logger)

	opts := api.Options{}
	if cfg.Auth.Enabled {
		opts.Keys = auth.NewKeyManager()
		opts.AuthEnabled = true
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = ratelimit.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	apiSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(opts),
		ReadTimeout:  cfg.readTimeout(),
		WriteTimeout: cfg.writeTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	exporter := metrics.NewExporter(db, hub)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", exporter)
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	mgr := shutdown.New(30 * time.Second)
	mgr.Register(shutdown.CloseResource(db, "store"))
	mgr.Register(shutdown.StopHTTPServer(metricsSrv, "metrics"))
	mgr.Register(shutdown.StopHTTPServer(apiSrv, "api"))

	go func() {
		logger.Info("Metrics listening", map[string]interface{}{"port": cfg.Server.MetricsPort})
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	go func() {
		logger.Info("Fleet API listening", map[string]interface{}{
			"port":     cfg.Server.Port,
			"database": cfg.Database.Type,
		})
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	mgr.Wait()
}
