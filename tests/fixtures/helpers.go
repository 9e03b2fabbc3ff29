package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expectedStatus int) {
	t.Helper()
	if resp.StatusCode != expectedStatus {
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, expectedStatus, resp.StatusCode,
			"Unexpected status code. Response body: %s", string(body))
	}
}

// DecodeJSON reads the response body into target and closes it
func DecodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	require.NoError(t, json.Unmarshal(body, target), "Response is not valid JSON: %s", string(body))
}

// WaitForHealthy polls the health endpoint until it answers 200 or the timeout passes
func WaitForHealthy(t *testing.T, client *APIClient, timeout time.Duration) error {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		resp, err := client.Get("/health")
		if err == nil {
			var health struct {
				Status string `json:"status"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&health)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK && decodeErr == nil && health.Status == "healthy" {
				t.Logf("Service healthy after %d attempts", attempt)
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("service did not become healthy within %s", timeout)
		}
		t.Logf("Service not healthy yet, retrying... (attempt %d)", attempt)
		time.Sleep(time.Second)
	}
}
