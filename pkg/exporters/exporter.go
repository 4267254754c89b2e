package exporters

import (
	"sync"

	"github.com/kubescape/procguardian/pkg/utils"
)

// generic exporter interface
type Exporter interface {
	// SendAlert sends an alert record to the exporter
	SendAlert(alert utils.AlertRecord) error
	// SendDebug reports a process that was evaluated in this cycle
	SendDebug(pid int, name, user string)
}

var _ Exporter = (*ExporterMock)(nil)

// ExporterMock keeps everything it receives. Err, when set, is returned by
// SendAlert and the alert is not kept.
type ExporterMock struct {
	Err error

	mu     sync.Mutex
	alerts []utils.AlertRecord
	debugs []string
}

func (e *ExporterMock) SendAlert(alert utils.AlertRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.alerts = append(e.alerts, alert)
	return nil
}

func (e *ExporterMock) SendDebug(pid int, name, user string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debugs = append(e.debugs, FormatDebugLine(pid, name, user))
}

func (e *ExporterMock) Alerts() []utils.AlertRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]utils.AlertRecord(nil), e.alerts...)
}

func (e *ExporterMock) Debugs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.debugs...)
}
