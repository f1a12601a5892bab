package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the service reads from the environment.
// Postgres, Kafka and the sponsor webhook are all optional: the router
// falls back to in-memory repos / the recording notifier when unset.
type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DBDSN string `mapstructure:"DB_DSN"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTIssuer   string `mapstructure:"JWT_ISSUER"`
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	SponsorTopic string `mapstructure:"SPONSOR_TOPIC"`

	SponsorWebhookURL    string `mapstructure:"SPONSOR_WEBHOOK_URL"`
	SponsorWebhookAPIKey string `mapstructure:"SPONSOR_WEBHOOK_API_KEY"`

	CodeValidityMaxDays int `mapstructure:"CODE_VALIDITY_MAX_DAYS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SPONSOR_TOPIC", "sponsor.result-ready.v1")
	v.SetDefault("CODE_VALIDITY_MAX_DAYS", 90)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT",
		"DB_DSN",
		"JWT_SECRET", "JWT_ISSUER", "JWT_AUDIENCE",
		"KAFKA_BROKERS", "SPONSOR_TOPIC",
		"SPONSOR_WEBHOOK_URL", "SPONSOR_WEBHOOK_API_KEY",
		"CODE_VALIDITY_MAX_DAYS",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CodeValidityMaxDays <= 0 {
		return nil, fmt.Errorf("CODE_VALIDITY_MAX_DAYS must be positive")
	}

	if cfg.IsProduction() {
		if cfg.JWTSecret == "" || cfg.JWTIssuer == "" || cfg.JWTAudience == "" {
			return nil, fmt.Errorf("JWT_SECRET, JWT_ISSUER and JWT_AUDIENCE are required in production")
		}
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required in production")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Brokers splits KAFKA_BROKERS into a clean list. Empty when Kafka is not configured.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if t := strings.TrimSpace(b); t != "" {
			out = append(out, t)
		}
	}
	return out
}
