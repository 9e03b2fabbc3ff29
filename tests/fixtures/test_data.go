package fixtures

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prefeitura-rio/app-matriculas/tests/config"
)

// APIClient wraps HTTP client with common test functionality
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewAPIClient creates a new API client for testing
func NewAPIClient(cfg *config.TestConfig) *APIClient {
	return &APIClient{
		BaseURL: cfg.BaseURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.APICallTimeout) * time.Second,
		},
	}
}

// Get performs GET request
func (c *APIClient) Get(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	return c.HTTPClient.Do(req)
}

// Post performs POST request
func (c *APIClient) Post(path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	return c.HTTPClient.Do(req)
}

// Put performs PUT request
func (c *APIClient) Put(path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("PUT", c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	return c.HTTPClient.Do(req)
}

// Delete performs DELETE request
func (c *APIClient) Delete(path string) (*http.Response, error) {
	req, err := http.NewRequest("DELETE", c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	return c.HTTPClient.Do(req)
}

