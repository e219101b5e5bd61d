package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Spatial cache.
	CacheCapacity     int
	RiskTTL           time.Duration
	IncidentsTTL      time.Duration
	ManualLocationTTL time.Duration

	// Redis substrate; empty address selects the in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// EFFIS primary provider.
	EFFISBaseURL   string
	EFFISUserAgent string
	EFFISTimeout   time.Duration

	// Regional secondary provider (mainland Scotland only).
	RegionalEnabled bool
	RegionalBaseURL string
	RegionalTimeout time.Duration

	// Chain budgets.
	GlobalDeadline  time.Duration
	PositionTimeout time.Duration

	// Kafka incident feed configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaIncidentTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	riskTTL, err := envDuration("RISK_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	incidentsTTL, err := envDuration("INCIDENTS_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	manualTTL, err := envDuration("MANUAL_LOCATION_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	effisTimeout, err := envDuration("EFFIS_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	regionalTimeout, err := envDuration("REGIONAL_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	globalDeadline, err := envDuration("GLOBAL_DEADLINE", 8*time.Second)
	if err != nil {
		return nil, err
	}
	positionTimeout, err := envDuration("POSITION_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	cacheCapacity, err := envInt("CACHE_CAPACITY", 512)
	if err != nil {
		return nil, err
	}
	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := splitBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CacheCapacity:     cacheCapacity,
		RiskTTL:           riskTTL,
		IncidentsTTL:      incidentsTTL,
		ManualLocationTTL: manualTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		EFFISBaseURL:   envOrDefault("EFFIS_BASE_URL", "https://maps.effis.emergency.copernicus.eu/effis"),
		EFFISUserAgent: envOrDefault("EFFIS_USER_AGENT", "moorwatch-wildfire-data-service/1.0"),
		EFFISTimeout:   effisTimeout,

		RegionalEnabled: envOrDefault("REGIONAL_ENABLED", "true") == "true",
		RegionalBaseURL: envOrDefault("REGIONAL_BASE_URL", "https://firedanger.sepa.org.uk/api/v1"),
		RegionalTimeout: regionalTimeout,

		GlobalDeadline:  globalDeadline,
		PositionTimeout: positionTimeout,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       kafkaBrokers,
		KafkaIncidentTopic: envOrDefault("KAFKA_INCIDENT_TOPIC", "wildfire-incidents"),
	}

	if cfg.CacheCapacity <= 0 {
		return nil, errors.New("CACHE_CAPACITY must be positive")
	}
	if cfg.GlobalDeadline <= cfg.EFFISTimeout {
		return nil, errors.New("GLOBAL_DEADLINE must exceed EFFIS_TIMEOUT")
	}
	if cfg.EFFISBaseURL == "" {
		return nil, errors.New("EFFIS_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func splitBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
