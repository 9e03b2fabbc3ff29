package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Redis configuration
	RedisURI      string        `json:"redis_uri"`
	RedisPassword string        `json:"redis_password"`
	RedisDB       int           `json:"redis_db"`
	RedisTTL      time.Duration `json:"redis_ttl"`

	// Redis cluster configuration; RedisURI is ignored when enabled
	RedisClusterEnabled bool     `json:"redis_cluster_enabled"`
	RedisClusterAddrs   []string `json:"redis_cluster_addrs"`

	// Collection names
	PersonCollection    string `json:"mongo_person_collection"`
	AuditLogsCollection string `json:"mongo_audit_logs_collection"`

	// Audit configuration
	AuditLogsEnabled bool `json:"audit_logs_enabled"`
	AuditWorkerCount int  `json:"audit_worker_count"`
	AuditBufferSize  int  `json:"audit_buffer_size"`

	// Phone numbers without country code are parsed in this region
	DefaultPhoneRegion string `json:"default_phone_region"`

	// Ages are computed against the calendar day in this zone
	Location *time.Location `json:"-"`

	// Tracing configuration
	TracingEnabled     bool    `json:"tracing_enabled"`
	TracingEndpoint    string  `json:"tracing_endpoint"`
	TracingSampleRatio float64 `json:"tracing_sample_ratio"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	redisTTL, err := time.ParseDuration(getEnvOrDefault("REDIS_TTL", "60m"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_TTL: %w", err)
	}

	redisClusterEnabled, err := strconv.ParseBool(getEnvOrDefault("REDIS_CLUSTER_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_CLUSTER_ENABLED: %w", err)
	}

	var redisClusterAddrs []string
	for _, addr := range strings.Split(getEnvOrDefault("REDIS_CLUSTER_ADDRS", ""), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			redisClusterAddrs = append(redisClusterAddrs, addr)
		}
	}
	if redisClusterEnabled && len(redisClusterAddrs) == 0 {
		return fmt.Errorf("REDIS_CLUSTER_ADDRS is required when REDIS_CLUSTER_ENABLED is true")
	}

	auditLogsEnabled, err := strconv.ParseBool(getEnvOrDefault("AUDIT_LOGS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_LOGS_ENABLED: %w", err)
	}

	auditWorkerCount, err := strconv.Atoi(getEnvOrDefault("AUDIT_WORKER_COUNT", "5"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_WORKER_COUNT: %w", err)
	}

	auditBufferSize, err := strconv.Atoi(getEnvOrDefault("AUDIT_BUFFER_SIZE", "1000"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_BUFFER_SIZE: %w", err)
	}

	location, err := time.LoadLocation(getEnvOrDefault("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	tracingEnabled, err := strconv.ParseBool(getEnvOrDefault("TRACING_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}

	tracingSampleRatio, err := strconv.ParseFloat(getEnvOrDefault("TRACING_SAMPLE_RATIO", "1"), 64)
	if err != nil || tracingSampleRatio < 0 || tracingSampleRatio > 1 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO: must be between 0 and 1")
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "matriculas"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		RedisTTL:      redisTTL,

		RedisClusterEnabled: redisClusterEnabled,
		RedisClusterAddrs:   redisClusterAddrs,

		// Collection names
		PersonCollection:    getEnvOrDefault("MONGODB_PERSON_COLLECTION", "people"),
		AuditLogsCollection: getEnvOrDefault("MONGODB_AUDIT_LOGS_COLLECTION", "audit_logs"),

		// Audit configuration
		AuditLogsEnabled: auditLogsEnabled,
		AuditWorkerCount: auditWorkerCount,
		AuditBufferSize:  auditBufferSize,

		DefaultPhoneRegion: getEnvOrDefault("DEFAULT_PHONE_REGION", "BR"),
		Location:           location,

		// Tracing configuration
		TracingEnabled:     tracingEnabled,
		TracingEndpoint:    getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
		TracingSampleRatio: tracingSampleRatio,
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
