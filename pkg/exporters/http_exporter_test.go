package exporters

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitHTTPExporter(t *testing.T) {
	// Test case: URL is empty
	_, err := InitHTTPExporter(HTTPExporterConfig{})
	assert.Error(t, err)

	// Test case: Method is not POST or PUT
	_, err = InitHTTPExporter(HTTPExporterConfig{URL: "http://localhost:9090", Method: "DELETE"})
	assert.Error(t, err)

	// Test case: defaults are filled in
	exp, err := InitHTTPExporter(HTTPExporterConfig{URL: "http://localhost:9090"})
	require.NoError(t, err)
	assert.Equal(t, "POST", exp.config.Method)
	assert.Equal(t, 5, exp.config.TimeoutSeconds)
	assert.Equal(t, 100, exp.config.MaxAlertsPerMinute)
	assert.NotNil(t, exp.config.Headers)
}

func TestHTTPExporterSendAlert(t *testing.T) {
	received := make(chan HTTPAlertsList, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/runtimealerts", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var alertsList HTTPAlertsList
		assert.NoError(t, json.Unmarshal(body, &alertsList))
		received <- alertsList
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exp, err := InitHTTPExporter(HTTPExporterConfig{
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "secret"},
	})
	require.NoError(t, err)

	require.NoError(t, exp.SendAlert(testAlert()))

	alertsList := <-received
	assert.Equal(t, "RuntimeAlerts", alertsList.Kind)
	require.Len(t, alertsList.Spec.Alerts, 1)
	assert.Equal(t, testAlert().ID, alertsList.Spec.Alerts[0].ID)
	assert.Equal(t, "apt update", alertsList.Spec.Alerts[0].Detail)
}

func TestHTTPExporterNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	exp, err := InitHTTPExporter(HTTPExporterConfig{URL: server.URL})
	require.NoError(t, err)
	assert.ErrorContains(t, exp.SendAlert(testAlert()), "500")
}

func TestHTTPExporterRateLimit(t *testing.T) {
	var requests atomic.Int32
	var limitNotices atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var alertsList HTTPAlertsList
		if err := json.NewDecoder(r.Body).Decode(&alertsList); err == nil &&
			len(alertsList.Spec.Alerts) == 1 && alertsList.Spec.Alerts[0].RuleID == alertLimitReachedRuleID {
			limitNotices.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exp, err := InitHTTPExporter(HTTPExporterConfig{URL: server.URL, MaxAlertsPerMinute: 2})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.NoError(t, exp.SendAlert(testAlert()))
	}

	// two alerts, then a single limit notice
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, int32(1), limitNotices.Load())
}
