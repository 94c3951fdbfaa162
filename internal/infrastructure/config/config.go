package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	CORS              CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// GatewayConfig holds the configuration surface of the payment gateway:
// provider credentials, environment selection, and the frontend base URL used
// to build redirect URLs for order-style providers.
type GatewayConfig struct {
	EnabledProviders []string      `mapstructure:"enabled_providers"`
	DefaultProvider  string        `mapstructure:"default_provider"`
	FrontendBaseURL  string        `mapstructure:"frontend_base_url"`
	CallTimeout      time.Duration `mapstructure:"call_timeout"`
	Stripe           StripeConfig  `mapstructure:"stripe"`
	PayPal           PayPalConfig  `mapstructure:"paypal"`
	Crypto           CryptoConfig  `mapstructure:"crypto"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type PayPalConfig struct {
	ClientID    string `mapstructure:"client_id"`
	Secret      string `mapstructure:"secret"`
	Environment string `mapstructure:"environment"` // sandbox or live
}

type CryptoConfig struct {
	Addresses map[string]string `mapstructure:"addresses"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from environment variables, e.g. PAYGATE_GATEWAY_STRIPE_SECRET_KEY.
	v.SetEnvPrefix("PAYGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paygate")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
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

// Validate checks the whole configuration, joining every field error. Missing
// provider credentials fail here, at construction time, not on first call.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}

	if len(c.Gateway.EnabledProviders) == 0 {
		errs = append(errs, fmt.Errorf("gateway.enabled_providers must not be empty"))
	}
	if !slices.Contains(c.Gateway.EnabledProviders, c.Gateway.DefaultProvider) {
		errs = append(errs, fmt.Errorf("gateway.default_provider %q is not enabled", c.Gateway.DefaultProvider))
	}
	if c.Gateway.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("gateway.call_timeout must be positive"))
	}

	if c.ProviderEnabled("stripe") && c.Gateway.Stripe.SecretKey == "" {
		errs = append(errs, fmt.Errorf("gateway.stripe.secret_key required when stripe is enabled"))
	}
	if c.ProviderEnabled("paypal") {
		if c.Gateway.PayPal.ClientID == "" || c.Gateway.PayPal.Secret == "" {
			errs = append(errs, fmt.Errorf("gateway.paypal.client_id and gateway.paypal.secret required when paypal is enabled"))
		}
		if env := c.Gateway.PayPal.Environment; env != "sandbox" && env != "live" {
			errs = append(errs, fmt.Errorf("gateway.paypal.environment must be sandbox or live, got %q", env))
		}
		if c.Gateway.FrontendBaseURL == "" {
			errs = append(errs, fmt.Errorf("gateway.frontend_base_url required when paypal is enabled"))
		}
	}

	return errors.Join(errs...)
}

// ProviderEnabled reports whether a provider id is in the enabled set.
func (c *Config) ProviderEnabled(name string) bool {
	return slices.Contains(c.Gateway.EnabledProviders, name)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.requests_per_minute", 120)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Gateway defaults
	v.SetDefault("gateway.enabled_providers", []string{"stripe", "paypal", "crypto", "wallet"})
	v.SetDefault("gateway.default_provider", "stripe")
	v.SetDefault("gateway.call_timeout", "30s")
	v.SetDefault("gateway.frontend_base_url", "http://localhost:3000")

	// Credential keys default to empty so AutomaticEnv can bind them through
	// Unmarshal; Validate rejects empty values for enabled providers.
	v.SetDefault("gateway.stripe.secret_key", "")
	v.SetDefault("gateway.paypal.client_id", "")
	v.SetDefault("gateway.paypal.secret", "")
	v.SetDefault("gateway.paypal.environment", "sandbox")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", true)

	// Instance ID
	v.SetDefault("instance_id", "paygate-1")
}
