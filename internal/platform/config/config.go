package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	MailEndpoint string
	MailAPIKey   string

	DispatchInterval  time.Duration
	DispatchBatchSize int
	DeliveryTimeout   time.Duration
	FanoutMaxInFlight int
	WebhookUserAgent  string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "beacon"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		MailEndpoint: os.Getenv("MAIL_ENDPOINT"),
		MailAPIKey:   os.Getenv("MAIL_API_KEY"),

		DispatchInterval:  envDuration("DISPATCH_INTERVAL", 15*time.Second),
		DispatchBatchSize: envInt("DISPATCH_BATCH_SIZE", 100),
		DeliveryTimeout:   envDuration("DELIVERY_TIMEOUT", 10*time.Second),
		FanoutMaxInFlight: envInt("FANOUT_MAX_IN_FLIGHT", 8),
		WebhookUserAgent:  os.Getenv("WEBHOOK_USER_AGENT"),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
