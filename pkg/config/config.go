// Copyright 2025 Tokenlens
//
// Service configuration

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the inspection service.
type Config struct {
	// Server Configuration
	ListenAddr string
	LogLevel   string

	// API key accepted by the HTTP surface. Empty disables auth (local
	// development only).
	APIKey string

	// Storage Configuration
	RedisURL string

	// Gateway Configuration
	IPFSGateway    string
	ArweaveGateway string

	// Reverse-name service endpoint
	ENSEndpoint string

	// Timeouts
	FetchTimeout      time.Duration
	InspectionTimeout time.Duration

	// Default chain when a request does not specify one
	DefaultChainID uint64

	// Optional YAML overrides file for gateways and timeouts
	OverridesFile string
}

// Load reads configuration from environment variables. Required variables
// have no defaults; call Validate() before starting the service.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnv("API_HOST", "0.0.0.0") + ":" + getEnv("API_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		APIKey: getEnv("API_KEY", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		IPFSGateway:    getEnv("IPFS_GATEWAY", "https://ipfs.io/ipfs/"),
		ArweaveGateway: getEnv("ARWEAVE_GATEWAY", "https://arweave.net/"),

		ENSEndpoint: getEnv("ENS_ENDPOINT", "https://api.ensdata.net/"),

		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		InspectionTimeout: getEnvDuration("INSPECTION_TIMEOUT", 90*time.Second),

		DefaultChainID: getEnvUint64("DEFAULT_CHAIN_ID", 1),

		OverridesFile: getEnv("CONFIG_OVERRIDES_FILE", ""),
	}

	if cfg.OverridesFile != "" {
		if err := cfg.applyOverrides(cfg.OverridesFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable for a production
// deployment.
func (c *Config) Validate() error {
	var errs []string

	if c.APIKey == "" {
		errs = append(errs, "API_KEY is required but not set")
	}
	if !strings.HasPrefix(c.IPFSGateway, "https://") {
		errs = append(errs, "IPFS_GATEWAY must be an https:// URL")
	}
	if !strings.HasPrefix(c.ArweaveGateway, "https://") {
		errs = append(errs, "ARWEAVE_GATEWAY must be an https:// URL")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// overrides is the YAML overrides file shape.
type overrides struct {
	IPFSGateway       string        `yaml:"ipfs_gateway"`
	ArweaveGateway    string        `yaml:"arweave_gateway"`
	ENSEndpoint       string        `yaml:"ens_endpoint"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	InspectionTimeout time.Duration `yaml:"inspection_timeout"`
}

// applyOverrides layers a YAML file on top of the environment values.
func (c *Config) applyOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read overrides file: %w", err)
	}

	var o overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("failed to parse overrides file: %w", err)
	}

	if o.IPFSGateway != "" {
		c.IPFSGateway = o.IPFSGateway
	}
	if o.ArweaveGateway != "" {
		c.ArweaveGateway = o.ArweaveGateway
	}
	if o.ENSEndpoint != "" {
		c.ENSEndpoint = o.ENSEndpoint
	}
	if o.FetchTimeout > 0 {
		c.FetchTimeout = o.FetchTimeout
	}
	if o.InspectionTimeout > 0 {
		c.InspectionTimeout = o.InspectionTimeout
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
