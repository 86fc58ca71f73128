package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
	PrintSchema     bool
	PrintDefinition bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("BINFILE_CONFIG", "configs/binfile.json"),
		"Path to configuration file (env: BINFILE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("BINFILE_CONFIG", "configs/binfile.json"),
		"Path to configuration file (env: BINFILE_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("BINFILE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: BINFILE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("BINFILE_LOG_FORMAT", "json"),
		"Log format: json, text (env: BINFILE_LOG_FORMAT)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("BINFILE_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: BINFILE_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and component settings, then exit")
	fs.BoolVar(&cfg.PrintSchema, "print-schema", false, "Print the JSON Schema of every component factory and exit")
	fs.BoolVar(&cfg.PrintDefinition, "print-definition", false,
		"Print the writeBinaryFile definition of every configured component and exit")

	fs.Usage = func() {
		printDetailedHelp(fs.Output(), fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for flags that need no configuration
	if cfg.ShowVersion || cfg.ShowHelp || cfg.PrintSchema {
		return nil
	}

	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", cfg.ShutdownTimeout)
	}

	return nil
}

func printDetailedHelp(w io.Writer, fs *flag.FlagSet) {
	_, _ = fmt.Fprintf(w, `%s - write base64 payloads carried in XML documents to files

Usage: %s [options]

Options:
`, appName, fs.Name())
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Run with a YAML config
  %[1]s --config=/etc/binfile/binfile.yaml

  # Run with debug logging
  %[1]s --log-level=debug --log-format=text

  # Validate configuration only
  %[1]s --validate

  # Show the declarative form of every configured writer
  %[1]s --print-definition

Version: %[2]s
Build: %[3]s
`, fs.Name(), Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
