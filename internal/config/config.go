package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = "https://router.huggingface.co/v1/chat/completions"
	DefaultModel    = "deepseek-ai/DeepSeek-V3.2-Exp:novita"

	defaultPort         = 8080
	defaultMaxBodyBytes = 1 << 20 // 1 MiB
	defaultTimeout      = 90 * time.Second
	defaultWriteTimeout = 120 * time.Second
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAPIKey   = "HF_API_KEY"
	EnvPort     = "RELAY_PORT"
	EnvModel    = "RELAY_MODEL"
	EnvLogLevel = "RELAY_LOG_LEVEL"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// UpstreamConfig describes the chat completion provider.
type UpstreamConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig covers operational logging and the two side files.
type LoggingConfig struct {
	Level string  `yaml:"level"`
	Debug SideLog `yaml:"debug"`
	Query SideLog `yaml:"query"`
}

// SideLog toggles an append-only side file.
type SideLog struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration the relay runs with when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           defaultPort,
			MaxBodyBytes:   defaultMaxBodyBytes,
			AllowedOrigins: []string{"*"},
			WriteTimeout:   defaultWriteTimeout,
		},
		Upstream: UpstreamConfig{
			Endpoint: DefaultEndpoint,
			Model:    DefaultModel,
			Timeout:  defaultTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
			Debug: SideLog{Enabled: true, Path: "hf-proxy-debug.log"},
			Query: SideLog{Enabled: true, Path: "_hf-query-logs.log"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays values from the process environment.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.Upstream.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.Upstream.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvPort, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}

	if err := validateEndpoint(c.Upstream.Endpoint); err != nil {
		return err
	}
	if strings.TrimSpace(c.Upstream.Model) == "" {
		return fmt.Errorf("upstream.model must be provided")
	}
	if strings.TrimSpace(c.Upstream.APIKey) == "" {
		return fmt.Errorf("upstream.api_key must be provided (or set %s)", EnvAPIKey)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	if c.Server.WriteTimeout <= c.Upstream.Timeout {
		return fmt.Errorf("server.write_timeout (%s) must exceed upstream.timeout (%s)", c.Server.WriteTimeout, c.Upstream.Timeout)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.Debug.Enabled && strings.TrimSpace(c.Logging.Debug.Path) == "" {
		return fmt.Errorf("logging.debug.path must be set when debug logging is enabled")
	}
	if c.Logging.Query.Enabled && strings.TrimSpace(c.Logging.Query.Path) == "" {
		return fmt.Errorf("logging.query.path must be set when query logging is enabled")
	}

	return nil
}

func validateEndpoint(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("upstream.endpoint must be provided")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("upstream.endpoint %q is not a valid URL: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.endpoint %q must be an absolute http(s) URL", raw)
	}
	return nil
}
