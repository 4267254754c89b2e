package exporters

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// ErrSinkUnavailable wraps every failure of the alert log. Scanning must stop
// when it is returned.
var ErrSinkUnavailable = errors.New("alert sink unavailable")

// SinkConfig configures the alert log and the console echo.
type SinkConfig struct {
	LogPath       string
	Quiet         bool
	DebugOnly     bool
	ConsoleFormat string
	// Console overrides stdout for the console echo
	Console io.Writer
}

type ExportersConfig struct {
	CsvPath                  string              `mapstructure:"csvPath"`
	SyslogURL                string              `mapstructure:"syslogURL"`
	SyslogProtocol           string              `mapstructure:"syslogProtocol" validate:"omitempty,oneof=udp tcp"`
	HTTPExporterConfig       *HTTPExporterConfig `mapstructure:"http"`
	AlertManagerExporterUrls []string            `mapstructure:"alertManagerExporterUrls"`
}

// This file will contain the single point of contact for all exporters,
// it will be used by the scheduler to send alerts to all exporters.
type ExporterBus struct {
	file *FileExporter
	// secondary exporters only log their failures
	exporters []Exporter
}

var _ Exporter = (*ExporterBus)(nil)

// InitExporters initializes all exporters. The alert log is opened once here,
// an error wrapping ErrSinkUnavailable means no alert could be persisted.
func InitExporters(fs afero.Fs, sinkConfig SinkConfig, exportersConfig ExportersConfig) (*ExporterBus, error) {
	file := InitFileExporter(fs, sinkConfig.LogPath)
	if err := file.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}

	var exporters []Exporter
	if consoleExp := InitConsoleExporter(sinkConfig.Quiet, sinkConfig.DebugOnly, sinkConfig.ConsoleFormat, sinkConfig.Console); consoleExp != nil {
		exporters = append(exporters, consoleExp)
	}
	if csvExp := InitCsvExporter(fs, exportersConfig.CsvPath); csvExp != nil {
		exporters = append(exporters, csvExp)
	}
	if syslogExp := InitSyslogExporter(exportersConfig.SyslogURL, exportersConfig.SyslogProtocol); syslogExp != nil {
		exporters = append(exporters, syslogExp)
	}
	for _, url := range exportersConfig.AlertManagerExporterUrls {
		exporters = append(exporters, InitAlertManagerExporter(url))
	}
	if exportersConfig.HTTPExporterConfig == nil {
		if httpURL := os.Getenv("HTTP_ENDPOINT_URL"); httpURL != "" {
			exportersConfig.HTTPExporterConfig = &HTTPExporterConfig{URL: httpURL}
		}
	}
	if exportersConfig.HTTPExporterConfig != nil {
		httpExp, err := InitHTTPExporter(*exportersConfig.HTTPExporterConfig)
		if err != nil {
			logger.L().Error("ExporterBus - failed to initialize http exporter", helpers.Error(err))
		} else {
			exporters = append(exporters, httpExp)
		}
	}

	logger.L().Info("ExporterBus - exporters initialized",
		helpers.String("logPath", sinkConfig.LogPath),
		helpers.Int("secondary", len(exporters)))

	return NewExporterBus(file, exporters...), nil
}

// NewExporterBus composes a bus from already built exporters.
func NewExporterBus(file *FileExporter, exporters ...Exporter) *ExporterBus {
	return &ExporterBus{file: file, exporters: exporters}
}

// SendAlert persists the alert before echoing it anywhere else. Only a failure
// of the alert log is returned.
func (e *ExporterBus) SendAlert(alert utils.AlertRecord) error {
	if e.file != nil {
		if err := e.file.SendAlert(alert); err != nil {
			return fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
		}
	}
	for _, exporter := range e.exporters {
		if err := exporter.SendAlert(alert); err != nil {
			logger.L().Warning("ExporterBus - failed to send alert",
				helpers.String("exporter", fmt.Sprintf("%T", exporter)),
				helpers.String("alertID", alert.ID),
				helpers.Error(err))
		}
	}
	return nil
}

func (e *ExporterBus) SendDebug(pid int, name, user string) {
	for _, exporter := range e.exporters {
		exporter.SendDebug(pid, name, user)
	}
}

// Close releases exporters holding connections.
func (e *ExporterBus) Close() error {
	var err error
	for _, exporter := range e.exporters {
		if closer, ok := exporter.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}
