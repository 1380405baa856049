package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the session service.
// It merges file defaults and environment overrides to support both local
// and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string

	MediaAPIKey    string
	MediaAPISecret string

	AuthTokenSecret   string
	CleanupSecretHash string

	GrantTTL        time.Duration
	IdleThreshold   time.Duration
	SweepInterval   time.Duration
	SweepBatchSize  int
	SweepLockTTL    time.Duration
	HeartbeatWindow time.Duration

	NearbyDefaultRadiusKM float64
	NearbyMaxResults      int
	ListPageSize          int

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Media struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"media"`
	Auth struct {
		TokenSecret string `yaml:"token_secret"`
	} `yaml:"auth"`
	Sessions struct {
		IdleThresholdMinutes int     `yaml:"idle_threshold_minutes"`
		SweepIntervalSeconds int     `yaml:"sweep_interval_seconds"`
		SweepBatchSize       int     `yaml:"sweep_batch_size"`
		GrantTTLMinutes      int     `yaml:"grant_ttl_minutes"`
		HeartbeatWindowSecs  int     `yaml:"heartbeat_window_seconds"`
		NearbyRadiusKM       float64 `yaml:"nearby_radius_km"`
	} `yaml:"sessions"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "spotcast-session-service",
		HTTPPort:              8080,
		GRPCPort:              9090,
		GrantTTL:              time.Hour,
		IdleThreshold:         2 * time.Hour,
		SweepInterval:         5 * time.Minute,
		SweepBatchSize:        100,
		SweepLockTTL:          time.Minute,
		HeartbeatWindow:       30 * time.Second,
		NearbyDefaultRadiusKM: 10,
		NearbyMaxResults:      100,
		ListPageSize:          50,
		MaxDBConns:            20,
		OutboxPollInterval:    2 * time.Second,
		OutboxBatchSize:       100,
		OutboxClaimTTL:        30 * time.Second,
		OutboxMaxRetries:      5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Media.APIKey != "" {
			cfg.MediaAPIKey = f.Media.APIKey
		}
		if f.Media.APISecret != "" {
			cfg.MediaAPISecret = f.Media.APISecret
		}
		if f.Auth.TokenSecret != "" {
			cfg.AuthTokenSecret = f.Auth.TokenSecret
		}
		if f.Sessions.IdleThresholdMinutes > 0 {
			cfg.IdleThreshold = time.Duration(f.Sessions.IdleThresholdMinutes) * time.Minute
		}
		if f.Sessions.SweepIntervalSeconds > 0 {
			cfg.SweepInterval = time.Duration(f.Sessions.SweepIntervalSeconds) * time.Second
		}
		if f.Sessions.SweepBatchSize > 0 {
			cfg.SweepBatchSize = f.Sessions.SweepBatchSize
		}
		if f.Sessions.GrantTTLMinutes > 0 {
			cfg.GrantTTL = time.Duration(f.Sessions.GrantTTLMinutes) * time.Minute
		}
		if f.Sessions.HeartbeatWindowSecs > 0 {
			cfg.HeartbeatWindow = time.Duration(f.Sessions.HeartbeatWindowSecs) * time.Second
		}
		if f.Sessions.NearbyRadiusKM > 0 {
			cfg.NearbyDefaultRadiusKM = f.Sessions.NearbyRadiusKM
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.MediaAPIKey = envOrDefault("MEDIA_API_KEY", cfg.MediaAPIKey)
	cfg.MediaAPISecret = envOrDefault("MEDIA_API_SECRET", cfg.MediaAPISecret)
	cfg.AuthTokenSecret = envOrDefault("AUTH_TOKEN_SECRET", cfg.AuthTokenSecret)
	cfg.CleanupSecretHash = envOrDefault("CLEANUP_SECRET_HASH", cfg.CleanupSecretHash)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.GrantTTL = time.Duration(envInt("GRANT_TTL_MINUTES", int(cfg.GrantTTL.Minutes()))) * time.Minute
	cfg.IdleThreshold = time.Duration(envInt("SESSION_IDLE_MINUTES", int(cfg.IdleThreshold.Minutes()))) * time.Minute
	cfg.SweepInterval = time.Duration(envInt("SWEEP_INTERVAL_SECONDS", int(cfg.SweepInterval.Seconds()))) * time.Second
	cfg.SweepBatchSize = envInt("SWEEP_BATCH_SIZE", cfg.SweepBatchSize)
	cfg.SweepLockTTL = time.Duration(envInt("SWEEP_LOCK_TTL_SECONDS", int(cfg.SweepLockTTL.Seconds()))) * time.Second
	cfg.HeartbeatWindow = time.Duration(envInt("HEARTBEAT_WINDOW_SECONDS", int(cfg.HeartbeatWindow.Seconds()))) * time.Second
	cfg.NearbyMaxResults = envInt("NEARBY_MAX_RESULTS", cfg.NearbyMaxResults)
	cfg.ListPageSize = envInt("LIST_PAGE_SIZE", cfg.ListPageSize)

	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.MediaAPIKey == "" || cfg.MediaAPISecret == "" {
		return Config{}, fmt.Errorf("missing MEDIA_API_KEY or MEDIA_API_SECRET")
	}
	if cfg.AuthTokenSecret == "" {
		return Config{}, fmt.Errorf("missing AUTH_TOKEN_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
