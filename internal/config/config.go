package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath      = "/etc/dfuhost/config.yaml"
	DefaultGRPCAddr  = "0.0.0.0:9000"
	DefaultHTTPAddr  = "0.0.0.0:8080"
	DefaultLogLevel  = "info"
	DefaultMQTTTopic = "dfuhost/plugins"
	DefaultClientID  = "dfuhost"
)

// Config is the host configuration file.
type Config struct {
	Core      CoreConfig       `yaml:"core"`
	MQTT      *MQTTConfig      `yaml:"mqtt"`
	NordicDFU *NordicDFUConfig `yaml:"nordic_dfu"`
}

type CoreConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`
}

// MQTTConfig enables the registration announcement when present.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type NordicDFUConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// Load parses the YAML config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes config bytes, applies defaults, and validates.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Core.GRPCAddr == "" {
		cfg.Core.GRPCAddr = DefaultGRPCAddr
	}
	if cfg.Core.HTTPAddr == "" {
		cfg.Core.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Core.LogLevel == "" {
		cfg.Core.LogLevel = DefaultLogLevel
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.Topic == "" {
			cfg.MQTT.Topic = DefaultMQTTTopic
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = DefaultClientID
		}
	}
}

// Validate enforces required invariants beyond YAML typing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.Core.GRPCAddr == "" {
		return fmt.Errorf("core.grpc_addr is required")
	}
	if cfg.Core.HTTPAddr == "" {
		return fmt.Errorf("core.http_addr is required")
	}
	switch strings.ToLower(cfg.Core.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("core.log_level %q is not one of debug, info, warn, error", cfg.Core.LogLevel)
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required")
		}
		if !strings.Contains(cfg.MQTT.Broker, "://") {
			return fmt.Errorf("mqtt.broker must include a scheme (tcp://, ssl://, ws://)")
		}
	}

	return nil
}
