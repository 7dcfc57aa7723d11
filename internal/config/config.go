// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// Exporter names accepted by OTEL_EXPORTER.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// OTLP transport protocols accepted by OTEL_EXPORTER_OTLP_PROTOCOL.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

const (
	defaultTimezone      = "Asia/Singapore"
	defaultCheckInterval = 30 * time.Minute
	minCheckInterval     = time.Minute
)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken       string
	GeminiAPIKey           string
	LogLevel               string
	LogJSON                bool
	Timezone               string
	Location               *time.Location
	RecurringCheckInterval time.Duration
	SeedDemoData           bool
	DefaultCurrency        string
	MetricsAddr            string
	OTelExporter           string
	OTelEndpoint           string
	OTelProtocol           string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		MetricsAddr:      strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		OTelEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	var errs []string

	cfg.LogJSON = parseBool(os.Getenv("LOG_JSON"))
	cfg.SeedDemoData = parseBool(os.Getenv("SEED_DEMO_DATA"))

	cfg.Timezone = defaultTimezone
	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("TIMEZONE %q is not a valid location", cfg.Timezone))
	} else {
		cfg.Location = loc
	}

	cfg.RecurringCheckInterval = defaultCheckInterval
	if raw := strings.TrimSpace(os.Getenv("RECURRING_CHECK_INTERVAL")); raw != "" {
		d, err := time.ParseDuration(raw)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("RECURRING_CHECK_INTERVAL %q is not a valid duration", raw))
		case d < minCheckInterval:
			errs = append(errs, fmt.Sprintf("RECURRING_CHECK_INTERVAL must be at least %s", minCheckInterval))
		default:
			cfg.RecurringCheckInterval = d
		}
	}

	cfg.DefaultCurrency = models.DefaultCurrency
	if cur := strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_CURRENCY"))); cur != "" {
		cfg.DefaultCurrency = cur
	}

	cfg.OTelExporter = ExporterNone
	if exp := strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER"))); exp != "" {
		cfg.OTelExporter = exp
	}

	cfg.OTelProtocol = ProtocolGRPC
	if proto := strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"))); proto != "" {
		cfg.OTelProtocol = proto
	}

	// Validate required configuration.
	if err := cfg.validate(errs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and
// appends to problems already found while parsing.
func (c *Config) validate(errs []string) error {
	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if _, ok := models.SupportedCurrencies[c.DefaultCurrency]; !ok {
		errs = append(errs, fmt.Sprintf("DEFAULT_CURRENCY %q is not supported", c.DefaultCurrency))
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.OTelEndpoint == "" {
			errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_EXPORTER=otlp")
		}
		if c.OTelProtocol != ProtocolGRPC && c.OTelProtocol != ProtocolHTTP {
			errs = append(errs, fmt.Sprintf("OTEL_EXPORTER_OTLP_PROTOCOL must be grpc or http/protobuf (got %q)", c.OTelProtocol))
		}
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be one of none, stdout, otlp (got %q)", c.OTelExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
