// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// DefaultNodeURL is used when neither the state file nor the config names a node.
const DefaultNodeURL = "http://localhost:8545"

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Node      NodeConfig      `mapstructure:"node"`
	Fallback  FallbackConfig  `mapstructure:"fallback"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	TUIMode   bool            `mapstructure:"-"` // Set at runtime, not from config file
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// NodeConfig holds primary node settings.
type NodeConfig struct {
	URL            string        `mapstructure:"url"`        // seed for the state file
	StateFile      string        `mapstructure:"state_file"` // persisted NODE_API_URL
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"` // 0 disables the background prober
}

// FallbackConfig holds public fallback endpoint settings.
type FallbackConfig struct {
	RequestsPerMinute int             `mapstructure:"requests_per_minute"` // 0 = unlimited
	BreakerFailures   uint32          `mapstructure:"breaker_failures"`
	BreakerCooldown   time.Duration   `mapstructure:"breaker_cooldown"`
	Chains            []ChainOverride `mapstructure:"chains"`
}

// ChainOverride adds or replaces a chain registry entry.
type ChainOverride struct {
	ChainID uint64 `mapstructure:"chain_id"`
	Name    string `mapstructure:"name"`
	RPCURL  string `mapstructure:"rpc_url"`
	Testnet bool   `mapstructure:"testnet"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	ServiceName    string            `mapstructure:"service_name"`
	TraceProvider  string            `mapstructure:"trace_provider"` // zipkin, otlp-grpc, otlp-http, console
	OTLPEndpoint   string            `mapstructure:"otlp_endpoint"`
	OTLPHeaders    map[string]string `mapstructure:"otlp_headers"`
	PrometheusPort int               `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("NODEPULSE")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "NODEPULSE_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "NODEPULSE_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "NODEPULSE_LOG_LEVEL", "LOG_LEVEL")

	// Node
	v.BindEnv("node.url", "NODEPULSE_NODE_URL", "NODE_API_URL")
	v.BindEnv("node.state_file", "NODEPULSE_STATE_FILE")
	v.BindEnv("node.request_timeout", "NODEPULSE_REQUEST_TIMEOUT")
	v.BindEnv("node.poll_interval", "NODEPULSE_POLL_INTERVAL")

	// Fallback
	v.BindEnv("fallback.requests_per_minute", "NODEPULSE_FALLBACK_RPM")

	// Server
	v.BindEnv("server.port", "NODEPULSE_PORT", "PORT")
	v.BindEnv("server.cors_origin", "NODEPULSE_CORS_ORIGIN")

	// Telemetry
	v.BindEnv("telemetry.enabled", "NODEPULSE_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "NODEPULSE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "NODEPULSE_OTEL_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "NODEPULSE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "nodepulse")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("node.url", DefaultNodeURL)
	v.SetDefault("node.state_file", "./config.json")
	v.SetDefault("node.request_timeout", "5s")
	v.SetDefault("node.poll_interval", "10s")

	v.SetDefault("fallback.requests_per_minute", 120)
	v.SetDefault("fallback.breaker_failures", 5)
	v.SetDefault("fallback.breaker_cooldown", "30s")

	v.SetDefault("server.port", 3009)
	v.SetDefault("server.cors_origin", "*")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "nodepulse")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidateNodeURL(c.Node.URL); err != nil {
		return fmt.Errorf("node.url: %w", err)
	}
	if c.Node.StateFile == "" {
		return fmt.Errorf("node.state_file is required")
	}
	if c.Node.RequestTimeout <= 0 {
		return fmt.Errorf("node.request_timeout must be positive, got %s", c.Node.RequestTimeout)
	}
	if c.Node.PollInterval < 0 {
		return fmt.Errorf("node.poll_interval cannot be negative, got %s", c.Node.PollInterval)
	}
	if c.Fallback.RequestsPerMinute < 0 {
		return fmt.Errorf("fallback.requests_per_minute cannot be negative")
	}
	for i, ch := range c.Fallback.Chains {
		if ch.ChainID == 0 {
			return fmt.Errorf("fallback.chains[%d]: chain_id is required", i)
		}
		if err := ValidateNodeURL(ch.RPCURL); err != nil {
			return fmt.Errorf("fallback.chains[%d].rpc_url: %w", i, err)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	return nil
}

// ValidateNodeURL checks that raw is an absolute http(s) or ws(s) URL.
func ValidateNodeURL(raw string) error {
	if raw == "" {
		return errors.New("url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
