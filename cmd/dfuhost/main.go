package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/dfuhost/internal/announce"
	"github.com/joshp123/dfuhost/internal/config"
	"github.com/joshp123/dfuhost/internal/core"
	"github.com/joshp123/dfuhost/internal/observability"
	"github.com/joshp123/dfuhost/internal/plugins"
	"github.com/joshp123/dfuhost/internal/registrant"
	"github.com/joshp123/dfuhost/internal/router"
	"github.com/joshp123/dfuhost/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", envOrDefault("DFUHOST_CONFIG", config.DefaultPath), "path to config.yaml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Core.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	compiled, disabled := plugins.Compiled(cfg)
	if len(disabled) > 0 {
		logger.Infow("plugins disabled by config", "plugins", disabled)
	}
	if err := core.ValidatePlugins(compiled); err != nil {
		logger.Fatalw("invalid plugins", "error", err)
	}

	registry := core.NewRegistry()
	generated := registrant.New(compiled...)
	if err := generated.RegisterWith(registry); err != nil {
		logger.Fatalw("register plugins", "error", err)
	}
	logger.Infow("plugins registered", "keys", registry.Keys(), "channels", registry.Channels())

	grpcServer, err := server.NewGRPCServer(cfg.Core.GRPCAddr, logger)
	if err != nil {
		logger.Fatalw("grpc listen", "addr", cfg.Core.GRPCAddr, "error", err)
	}
	router.RegisterPlugins(grpcServer.Server, registry, compiled)

	metricsRegistry := core.MetricsRegistry(registry)
	metricsRegistry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dfuhost_build_info",
		Help: "Build information",
	}, func() float64 { return 1 }))

	httpMux := http.NewServeMux()
	httpMux.Handle("/health", server.HealthHandler(registry, generated.Key()))
	httpMux.Handle("/metrics", server.MetricsHandler(metricsRegistry, logger))
	httpMux.Handle("/plugins", server.PluginsHandler(registry))

	httpServer := server.NewHTTPServer(cfg.Core.HTTPAddr, httpMux)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			logger.Fatalw("http serve", "error", err)
		}
	}()

	if cfg.MQTT != nil {
		go announceRegistry(cfg.MQTT, registry, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		logger.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("http shutdown", "error", err)
		}
		grpcServer.Stop()
	}()

	logger.Infow("serving", "grpc", grpcServer.Addr(), "http", cfg.Core.HTTPAddr)
	if err := grpcServer.Serve(); err != nil {
		logger.Fatalw("grpc serve", "error", err)
	}
	<-stopped
}

// loadConfig falls back to defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func announceRegistry(cfg *config.MQTTConfig, registry *core.Registry, logger *observability.Logger) {
	pub, err := announce.NewMQTTPublisher(cfg)
	if err != nil {
		logger.Warnw("mqtt announce disabled", "broker", cfg.Broker, "error", err)
		return
	}
	defer pub.Close()

	if err := announce.Announce(pub, cfg.Topic, registry, time.Now()); err != nil {
		logger.Warnw("mqtt announce failed", "topic", cfg.Topic, "error", err)
		return
	}
	logger.Infow("announced registration", "topic", cfg.Topic)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
