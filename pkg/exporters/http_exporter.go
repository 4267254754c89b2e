package exporters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/utils"
	"golang.org/x/time/rate"
)

const alertLimitReachedRuleID = "AlertLimitReached"

// HTTPExporterConfig describes the receiver alerts are posted to.
// Zero values are filled in by Validate.
type HTTPExporterConfig struct {
	URL                string            `json:"url" mapstructure:"url"`
	Headers            map[string]string `json:"headers" mapstructure:"headers"`
	TimeoutSeconds     int               `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	Method             string            `json:"method" mapstructure:"method"`
	MaxAlertsPerMinute int               `json:"maxAlertsPerMinute" mapstructure:"maxAlertsPerMinute"`
}

var _ Exporter = (*HTTPExporter)(nil)

// HTTPExporter posts every alert as a single-item RuntimeAlerts list.
type HTTPExporter struct {
	config             HTTPExporterConfig
	Host               string `json:"host"`
	httpClient         *http.Client
	limiter            *rate.Limiter
	limitLock          sync.Mutex
	alertLimitNotified bool
}

type HTTPAlertsList struct {
	Kind       string             `json:"kind"`
	ApiVersion string             `json:"apiVersion"`
	Spec       HTTPAlertsListSpec `json:"spec"`
}

type HTTPAlertsListSpec struct {
	Host   string              `json:"host"`
	Alerts []utils.AlertRecord `json:"alerts"`
}

func (config *HTTPExporterConfig) Validate() error {
	if config.Method == "" {
		config.Method = "POST"
	} else if config.Method != "POST" && config.Method != "PUT" {
		return fmt.Errorf("method must be POST or PUT")
	}
	if config.TimeoutSeconds == 0 {
		config.TimeoutSeconds = 5
	}
	if config.MaxAlertsPerMinute == 0 {
		config.MaxAlertsPerMinute = 100
	}
	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}
	if config.URL == "" {
		return fmt.Errorf("URL is required")
	}
	return nil
}

// InitHTTPExporter initializes an HTTPExporter with the given URL, headers, timeout, and method
func InitHTTPExporter(config HTTPExporterConfig) (*HTTPExporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	hostName, _ := os.Hostname()
	perAlert := time.Minute / time.Duration(config.MaxAlertsPerMinute)
	return &HTTPExporter{
		config: config,
		Host:   hostName,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(perAlert), config.MaxAlertsPerMinute),
	}, nil
}

func (exporter *HTTPExporter) SendAlert(alert utils.AlertRecord) error {
	exporter.limitLock.Lock()
	if !exporter.limiter.Allow() {
		notified := exporter.alertLimitNotified
		exporter.alertLimitNotified = true
		exporter.limitLock.Unlock()
		if notified {
			return nil
		}
		return exporter.sendAlertLimitReached(alert.Timestamp)
	}
	exporter.alertLimitNotified = false
	exporter.limitLock.Unlock()

	return exporter.sendInAlertList(alert)
}

func (exporter *HTTPExporter) SendDebug(_ int, _, _ string) {}

func (exporter *HTTPExporter) sendAlertLimitReached(timestamp time.Time) error {
	logger.L().Error("Alert limit reached", helpers.Int("maxAlertsPerMinute", exporter.config.MaxAlertsPerMinute))
	return exporter.sendInAlertList(utils.AlertRecord{
		RuleID:    alertLimitReachedRuleID,
		RuleLabel: "alert limit reached, check logs for more information",
		Timestamp: timestamp,
	})
}

func (exporter *HTTPExporter) sendInAlertList(alert utils.AlertRecord) error {
	httpAlertsList := HTTPAlertsList{
		Kind:       "RuntimeAlerts",
		ApiVersion: "procguardian.kubescape.io/v1",
		Spec: HTTPAlertsListSpec{
			Host:   exporter.Host,
			Alerts: []utils.AlertRecord{alert},
		},
	}

	bodyBytes, err := json.Marshal(httpAlertsList)
	if err != nil {
		return fmt.Errorf("marshal alerts list: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exporter.httpClient.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, exporter.config.Method,
		exporter.config.URL+"/v1/runtimealerts", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range exporter.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := exporter.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	// discard the body
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		logger.L().Debug("failed to clear response body", helpers.Error(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("received non-2xx status code %d", resp.StatusCode)
	}
	return nil
}
