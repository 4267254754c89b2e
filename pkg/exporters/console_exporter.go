package exporters

import (
	"io"
	"os"

	"github.com/kubescape/procguardian/pkg/utils"
	log "github.com/sirupsen/logrus"
)

const (
	ConsoleFormatText = "text"
	ConsoleFormatJSON = "json"
)

var _ Exporter = (*ConsoleExporter)(nil)

// ConsoleExporter echoes alert and debug lines to the terminal.
type ConsoleExporter struct {
	logger    *log.Logger
	debugOnly bool
}

// lineFormatter prints the entry message as is.
type lineFormatter struct{}

func (lineFormatter) Format(entry *log.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// InitConsoleExporter returns nil when quiet is set. debugOnly suppresses the
// per-process debug lines, alerts are still echoed.
func InitConsoleExporter(quiet, debugOnly bool, format string, out io.Writer) *ConsoleExporter {
	if quiet {
		return nil
	}
	if out == nil {
		out = os.Stdout
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(log.InfoLevel)
	if format == ConsoleFormatJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(lineFormatter{})
	}

	return &ConsoleExporter{
		logger:    logger,
		debugOnly: debugOnly,
	}
}

func (exporter *ConsoleExporter) SendAlert(alert utils.AlertRecord) error {
	exporter.logger.WithFields(log.Fields{
		"alertID":  alert.ID,
		"ruleID":   alert.RuleID,
		"priority": PriorityToStatus(alert.Priority),
		"pid":      alert.PID,
		"name":     alert.Name,
		"user":     alert.User,
		"detail":   alert.Detail,
	}).Warn(FormatAlertLine(alert))
	return nil
}

func (exporter *ConsoleExporter) SendDebug(pid int, name, user string) {
	if exporter.debugOnly {
		return
	}
	exporter.logger.WithFields(log.Fields{
		"pid":  pid,
		"name": name,
		"user": user,
	}).Info(FormatDebugLine(pid, name, user))
}
