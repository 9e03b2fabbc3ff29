package config

import (
	"fmt"
	"os"
	"strconv"
)

// TestConfig holds configuration for E2E/smoke tests
type TestConfig struct {
	// API endpoint configuration
	BaseURL string // e.g., "http://localhost:8080/v1"

	// Tenant the smoke tests write into; records are deleted afterwards
	TenantID string

	// Test timeouts
	HealthCheckTimeout int // seconds
	APICallTimeout     int // seconds
}

// LoadTestConfig loads configuration from environment variables.
// It fails when TEST_BASE_URL is unset so smoke tests never hit a default host by accident.
func LoadTestConfig() (*TestConfig, error) {
	baseURL := os.Getenv("TEST_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("TEST_BASE_URL is required")
	}

	tenantID := os.Getenv("TEST_TENANT_ID")
	if tenantID == "" {
		tenantID = "e2e-smoke"
	}

	apiTimeout := 10
	if raw := os.Getenv("TEST_API_TIMEOUT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid TEST_API_TIMEOUT: %q", raw)
		}
		apiTimeout = parsed
	}

	return &TestConfig{
		BaseURL:            baseURL,
		TenantID:           tenantID,
		HealthCheckTimeout: 30,
		APICallTimeout:     apiTimeout,
	}, nil
}
