package exporters

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var _ Exporter = (*CsvExporter)(nil)

// CsvExporter is an exporter that sends alerts to csv
type CsvExporter struct {
	fs      afero.Fs
	CsvPath string
	mu      sync.Mutex
}

// InitCsvExporter initializes a new CsvExporter, writing the header row when
// the file does not exist yet.
func InitCsvExporter(fs afero.Fs, csvPath string) *CsvExporter {
	if csvPath == "" {
		csvPath = os.Getenv("EXPORTER_CSV_PATH")
		if csvPath == "" {
			logrus.Debugf("csv path not provided, alerts will not be exported to csv")
			return nil
		}
	}

	if _, err := fs.Stat(csvPath); os.IsNotExist(err) {
		writeHeaders(fs, csvPath)
	}

	return &CsvExporter{
		fs:      fs,
		CsvPath: csvPath,
	}
}

// SendAlert sends an alert to csv
func (ce *CsvExporter) SendAlert(alert utils.AlertRecord) error {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	csvFile, err := ce.fs.OpenFile(ce.CsvPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer csvFile.Close()

	csvWriter := csv.NewWriter(csvFile)
	if err := csvWriter.Write([]string{
		alert.ID,
		alert.RuleID,
		alert.RuleLabel,
		PriorityToStatus(alert.Priority),
		fmt.Sprintf("%d", alert.PID),
		alert.Name,
		alert.User,
		alert.Detail,
		alert.Timestamp.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (ce *CsvExporter) SendDebug(_ int, _, _ string) {}

func writeHeaders(fs afero.Fs, csvPath string) {
	csvFile, err := fs.OpenFile(csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logrus.Errorf("failed to initialize csv exporter: %v", err)
		return
	}
	defer csvFile.Close()

	csvWriter := csv.NewWriter(csvFile)
	defer csvWriter.Flush()
	_ = csvWriter.Write([]string{
		"Alert ID",
		"Rule ID",
		"Rule",
		"Severity",
		"PID",
		"Name",
		"User",
		"Detail",
		"Timestamp",
	})
}
