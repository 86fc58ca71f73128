// Package main implements the binfile process: it hosts write binary file processors
// on NATS, extracting base64 payloads from XML documents into files.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/c360/binfile/component"
	"github.com/c360/binfile/componentregistry"
	"github.com/c360/binfile/config"
	"github.com/c360/binfile/health"
	"github.com/c360/binfile/metric"
	"github.com/c360/binfile/natsclient"
	"github.com/c360/binfile/pkg/retry"
	"github.com/c360/binfile/processor/writebinary"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "binfile"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	cliCfg, err := parseFlags(fs, args)
	if stderrors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		fs.SetOutput(stdout)
		printDetailedHelp(stdout, fs)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	registry := component.NewRegistry()
	if err := componentregistry.Register(registry); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	if cliCfg.PrintSchema {
		return printSchemas(stdout, registry)
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	if cliCfg.PrintDefinition {
		return printDefinitions(stdout, cfg)
	}

	if cliCfg.Validate {
		if err := createComponents(registry, cfg, component.Dependencies{Logger: logger}); err != nil {
			return err
		}
		logger.Info("Configuration is valid", "components", registry.InstanceNames())
		return nil
	}

	logger.Info("Starting binfile",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"platform", cfg.Platform.ID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, cfg, registry, logger, cliCfg.ShutdownTimeout)
}

// serve connects to NATS, starts every enabled component and blocks until ctx is done.
func serve(
	ctx context.Context,
	cfg *config.Config,
	registry *component.Registry,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
) error {
	metricsRegistry := metric.NewMetricsRegistry()

	natsClient, err := newNATSClient(cfg, metricsRegistry, logger, shutdownTimeout)
	if err != nil {
		return err
	}
	if err := retry.Do(ctx, retry.Startup(), natsClient.Connect); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if err := natsClient.Close(closeCtx); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)
		current := config.NewSafeConfig(cfg)
		server.SetHealthCheck(func() (bool, any) {
			status := health.Check(current.Get().Platform.ID, registry, natsClient)
			return !status.IsUnhealthy(), status
		})
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() { _ = server.Stop() }()
		logger.Info("Metrics server listening", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	deps := component.Dependencies{
		NATSClient:      natsClient,
		MetricsRegistry: metricsRegistry,
		Logger:          logger,
	}
	if err := createComponents(registry, cfg, deps); err != nil {
		return err
	}

	started, err := startComponents(ctx, registry)
	defer stopComponents(started, shutdownTimeout, logger)
	if err != nil {
		return err
	}

	logger.Info("binfile started", "components", registry.InstanceNames())
	<-ctx.Done()
	logger.Info("Received shutdown signal")

	return nil
}

func newNATSClient(
	cfg *config.Config, metricsRegistry *metric.MetricsRegistry, logger *slog.Logger, drainTimeout time.Duration,
) (*natsclient.Client, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithDrainTimeout(drainTimeout),
		natsclient.WithLogger(logger),
		natsclient.WithMetrics(metricsRegistry),
		natsclient.WithHealthChangeCallback(func(healthy bool) {
			logger.Info("NATS connection health changed", "healthy", healthy)
		}),
	}
	if cfg.NATS.ReconnectWait > 0 {
		opts = append(opts, natsclient.WithReconnectWait(cfg.NATS.ReconnectWait))
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}

	client, err := natsclient.NewClient(strings.Join(cfg.NATS.URLs, ","), opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}
	return client, nil
}

// createComponents builds every enabled component through its registered factory.
// Components whose factory is unknown are skipped with a warning.
func createComponents(registry *component.Registry, cfg *config.Config, deps component.Dependencies) error {
	enabled := cfg.EnabledComponents()
	available := registry.ListAvailable()

	for _, name := range sortedNames(enabled) {
		cc := enabled[name]
		if _, ok := available[cc.Name]; !ok {
			slog.Warn("Component configured but not registered", "instance", name, "factory", cc.Name)
			continue
		}
		if _, err := registry.CreateComponent(name, cc.Name, cc.Config, deps); err != nil {
			return fmt.Errorf("create component %s: %w", name, err)
		}
		slog.Debug("Created component", "instance", name, "factory", cc.Name)
	}
	return nil
}

// startComponents initializes and starts the registered instances in name order. The
// returned slice holds every component that was started, even when err is set.
func startComponents(ctx context.Context, registry *component.Registry) ([]component.LifecycleComponent, error) {
	var started []component.LifecycleComponent
	for _, name := range registry.InstanceNames() {
		lc, ok := component.AsLifecycleComponent(registry.Component(name))
		if !ok {
			continue
		}
		if err := lc.Initialize(); err != nil {
			return started, fmt.Errorf("initialize component %s: %w", name, err)
		}
		if err := lc.Start(ctx); err != nil {
			return started, fmt.Errorf("start component %s: %w", name, err)
		}
		started = append(started, lc)
	}
	return started, nil
}

// stopComponents stops components in reverse start order.
func stopComponents(started []component.LifecycleComponent, timeout time.Duration, logger *slog.Logger) {
	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].Stop(timeout); err != nil {
			logger.Error("Error stopping component", "error", err)
		}
	}
}

func printSchemas(w io.Writer, registry *component.Registry) error {
	available := registry.ListAvailable()
	schemas := make(map[string]any, len(available))
	for name := range available {
		reg, ok := registry.Registration(name)
		if !ok {
			continue
		}
		schemas[name] = component.JSONSchema(name, reg)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schemas)
}

// printDefinitions renders the declarative form of every enabled write binary file
// component.
func printDefinitions(w io.Writer, cfg *config.Config) error {
	enabled := cfg.EnabledComponents()
	for _, name := range sortedNames(enabled) {
		cc := enabled[name]
		if cc.Name != "write_binary_file" {
			continue
		}

		wbCfg := writebinary.DefaultConfig()
		if len(cc.Config) > 0 {
			if err := json.Unmarshal(cc.Config, &wbCfg); err != nil {
				return fmt.Errorf("component %s: %w", name, err)
			}
		}
		settings, err := wbCfg.Settings()
		if err != nil {
			return fmt.Errorf("component %s: %w", name, err)
		}
		out, err := writebinary.MarshalDefinition(settings)
		if err != nil {
			return fmt.Errorf("component %s: %w", name, err)
		}

		if _, err := fmt.Fprintf(w, "<!-- %s -->\n%s\n", name, out); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames(components config.ComponentConfigs) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadConfig loads and validates configuration from the specified file path
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	loader.EnableValidation(true)
	cfg, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
