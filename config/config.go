package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/c360/binfile/errors"
)

// ComponentTypeProcessor is the only component type the binfile host runs.
const ComponentTypeProcessor = "processor"

// ComponentConfig provides configuration for creating a component instance.
// The instance name comes from the map key in the components configuration.
type ComponentConfig struct {
	Type    string          `json:"type"`    // Component type (processor)
	Name    string          `json:"name"`    // Factory name (e.g., "write_binary_file")
	Enabled bool            `json:"enabled"` // Whether component is enabled
	Config  json.RawMessage `json:"config"`  // Component-specific configuration
}

// Validate ensures the component configuration is valid
func (c ComponentConfig) Validate() error {
	if c.Type == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ComponentConfig", "Validate",
			"component type cannot be empty")
	}
	if c.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ComponentConfig", "Validate",
			"component factory name cannot be empty")
	}
	if c.Type != ComponentTypeProcessor {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ComponentConfig", "Validate",
			fmt.Sprintf("invalid component type: %s", c.Type))
	}
	return nil
}

// ComponentConfigs holds component instance configurations keyed by instance name.
// Components are only created if their factory is registered and enabled is true.
type ComponentConfigs map[string]ComponentConfig

// Config represents the complete application configuration
type Config struct {
	Platform   PlatformConfig   `json:"platform"`
	NATS       NATSConfig       `json:"nats"`
	Metrics    MetricsConfig    `json:"metrics"`
	Components ComponentConfigs `json:"components"`
}

// PlatformConfig identifies the running instance
type PlatformConfig struct {
	ID          string `json:"id"`
	Environment string `json:"environment,omitempty"` // "prod", "dev", "test"
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty"`
	Name          string        `json:"name,omitempty"` // Client connection name
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Platform.ID == "" {
		return errors.WrapInvalid(
			errors.Detail(errors.ErrMissingConfig, "platform.id is required"),
			"Config", "Validate", "platform validation")
	}
	if !isValidNATSSubjectPart(c.Platform.ID) {
		return errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig,
				"platform.id '%s' must be alphanumeric with dots, dashes, underscores", c.Platform.ID),
			"Config", "Validate", "platform validation")
	}

	if len(c.NATS.URLs) == 0 {
		return errors.WrapInvalid(
			errors.Detail(errors.ErrMissingConfig, "nats.urls is required"),
			"Config", "Validate", "nats validation")
	}
	for i, u := range c.NATS.URLs {
		if strings.TrimSpace(u) == "" {
			return errors.WrapInvalid(
				errors.Detail(errors.ErrInvalidConfig, "nats.urls[%d] is empty", i),
				"Config", "Validate", "nats validation")
		}
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "metrics.port %d out of range", c.Metrics.Port),
			"Config", "Validate", "metrics validation")
	}

	for instanceName, cc := range c.Components {
		if instanceName == "" {
			return errors.WrapInvalid(
				errors.Detail(errors.ErrInvalidConfig, "component instance name cannot be empty"),
				"Config", "Validate", "component validation")
		}
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("component %s: %w", instanceName, err)
		}
	}

	return nil
}

// EnabledComponents returns the enabled component instances
func (c *Config) EnabledComponents() ComponentConfigs {
	enabled := make(ComponentConfigs)
	for name, cc := range c.Components {
		if cc.Enabled {
			enabled[name] = cc
		}
	}
	return enabled
}

// isValidNATSSubjectPart checks if a string is valid for use in NATS subjects.
func isValidNATSSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// String returns a JSON representation of the config with credentials masked
func (c *Config) String() string {
	masked := c.Clone()
	if masked.NATS.Password != "" {
		masked.NATS.Password = "***"
	}
	if masked.NATS.Token != "" {
		masked.NATS.Token = "***"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// UnmarshalJSON accepts reconnect_wait either as a duration string or as nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		NATS struct {
			URLs          []string `json:"urls"`
			Name          string   `json:"name,omitempty"`
			MaxReconnects int      `json:"max_reconnects"`
			ReconnectWait any      `json:"reconnect_wait"`
			Username      string   `json:"username,omitempty"`
			Password      string   `json:"password,omitempty"`
			Token         string   `json:"token,omitempty"`
		} `json:"nats"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.NATS.URLs = aux.NATS.URLs
	c.NATS.Name = aux.NATS.Name
	c.NATS.MaxReconnects = aux.NATS.MaxReconnects
	c.NATS.Username = aux.NATS.Username
	c.NATS.Password = aux.NATS.Password
	c.NATS.Token = aux.NATS.Token
	c.NATS.ReconnectWait = 0

	switch v := aux.NATS.ReconnectWait.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("nats.reconnect_wait: %w", err)
		}
		c.NATS.ReconnectWait = d
	case float64:
		c.NATS.ReconnectWait = time.Duration(v)
	}

	return nil
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return stderrors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
