package exporters

import (
	"fmt"
	"log/syslog"
	"os"

	"github.com/aquilax/truncate"
	"github.com/crewjam/rfc5424"
	"github.com/kubescape/procguardian/pkg/utils"
	log "github.com/sirupsen/logrus"
)

const (
	syslogAppName       = "procguardian"
	syslogMaxMessageLen = 1024
)

var _ Exporter = (*SyslogExporter)(nil)

// SyslogExporter is an exporter that sends alerts to syslog
type SyslogExporter struct {
	writer   *syslog.Writer
	hostname string
}

// InitSyslogExporter initializes a new SyslogExporter
func InitSyslogExporter(syslogHost, protocol string) *SyslogExporter {
	if syslogHost == "" {
		syslogHost = os.Getenv("SYSLOG_HOST")
		if syslogHost == "" {
			return nil
		}
	}

	// Set default protocol to UDP
	if protocol == "" {
		protocol = os.Getenv("SYSLOG_PROTOCOL")
		if protocol == "" {
			protocol = "udp"
		}
	}

	writer, err := syslog.Dial(protocol, syslogHost, syslog.LOG_ERR, syslogAppName)
	if err != nil {
		log.Printf("failed to initialize syslog exporter: %v", err)
		return nil
	}

	hostname, _ := os.Hostname()
	return &SyslogExporter{
		writer:   writer,
		hostname: hostname,
	}
}

// SendAlert sends an alert to syslog (RFC 5424) - https://tools.ietf.org/html/rfc5424
func (se *SyslogExporter) SendAlert(alert utils.AlertRecord) error {
	message := rfc5424.Message{
		Priority:  rfc5424.Error,
		Timestamp: alert.Timestamp,
		Hostname:  se.hostname,
		AppName:   syslogAppName,
		ProcessID: fmt.Sprintf("%d", alert.PID),
		StructuredData: []rfc5424.StructuredData{
			{
				ID: fmt.Sprintf("procguardian@%d", alert.PID),
				Parameters: []rfc5424.SDParam{
					{
						Name:  "alert_id",
						Value: alert.ID,
					},
					{
						Name:  "rule_id",
						Value: alert.RuleID,
					},
					{
						Name:  "severity",
						Value: PriorityToStatus(alert.Priority),
					},
					{
						Name:  "comm",
						Value: alert.Name,
					},
					{
						Name:  "user",
						Value: alert.User,
					},
				},
			},
		},
		Message: []byte(truncate.Truncate(FormatAlertLine(alert), syslogMaxMessageLen, "...", truncate.PositionEnd)),
	}

	if _, err := message.WriteTo(se.writer); err != nil {
		return fmt.Errorf("send alert to syslog: %w", err)
	}
	return nil
}

func (se *SyslogExporter) SendDebug(_ int, _, _ string) {}

func (se *SyslogExporter) Close() error {
	return se.writer.Close()
}
