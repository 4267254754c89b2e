package exporters

// here we will have the functionality to export the alerts to the alert manager
// Path: pkg/exporters/alert_manager.go

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/prometheus/alertmanager/api/v2/client"
	"github.com/prometheus/alertmanager/api/v2/client/alert"
	"github.com/prometheus/alertmanager/api/v2/models"
)

const alertManagerAlertTTL = time.Hour

var _ Exporter = (*AlertManagerExporter)(nil)

type AlertManagerExporter struct {
	Host   string
	client *client.AlertmanagerAPI
}

// InitAlertManagerExporter takes the alertmanager address as host:port.
func InitAlertManagerExporter(alertManagerURL string) *AlertManagerExporter {
	// Create a new alertManager client
	cfg := client.DefaultTransportConfig().WithHost(alertManagerURL)
	amClient := client.NewHTTPClientWithConfig(nil, cfg)
	hostName, err := os.Hostname()
	if err != nil {
		hostName = "unknown"
	}

	return &AlertManagerExporter{
		client: amClient,
		Host:   hostName,
	}
}

func (ame *AlertManagerExporter) SendAlert(record utils.AlertRecord) error {
	summary := fmt.Sprintf("Rule '%s' matched process '%s' (%d) on host '%s'", record.RuleLabel, record.Name, record.PID, ame.Host)
	myAlert := models.PostableAlert{
		StartsAt: strfmt.DateTime(record.Timestamp),
		EndsAt:   strfmt.DateTime(record.Timestamp.Add(alertManagerAlertTTL)),
		Annotations: map[string]string{
			"title":       summary,
			"summary":     summary,
			"message":     FormatAlertLine(record),
			"description": record.Detail,
		},
		Alert: models.Alert{
			Labels: map[string]string{
				"alertname": "ProcGuardianRuleMatched",
				"alert_id":  record.ID,
				"rule_name": record.RuleLabel,
				"rule_id":   record.RuleID,
				"severity":  PriorityToStatus(record.Priority),
				"host":      ame.Host,
				"pid":       fmt.Sprintf("%d", record.PID),
				"comm":      record.Name,
				"user":      record.User,
			},
		},
	}

	// Send the alert
	params := alert.NewPostAlertsParams().WithContext(context.Background()).WithAlerts(models.PostableAlerts{&myAlert})
	isOK, err := ame.client.Alert.PostAlerts(params)
	if err != nil {
		return fmt.Errorf("send alert to alertmanager: %w", err)
	}
	if isOK == nil {
		return fmt.Errorf("alert was not accepted by alertmanager")
	}
	return nil
}

func (ame *AlertManagerExporter) SendDebug(_ int, _, _ string) {}
