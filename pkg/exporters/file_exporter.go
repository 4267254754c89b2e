package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/spf13/afero"
)

const (
	logDirPerm  = 0o755
	logFilePerm = 0o644
)

var _ Exporter = (*FileExporter)(nil)

// FileExporter appends alert lines to the alert log. It is the only exporter
// whose failures are reported to the caller.
type FileExporter struct {
	fs   afero.Fs
	path string

	mu       sync.Mutex
	dirReady bool
}

// InitFileExporter initializes a new FileExporter writing to path on fs
func InitFileExporter(fs afero.Fs, path string) *FileExporter {
	return &FileExporter{
		fs:   fs,
		path: path,
	}
}

func (fe *FileExporter) Path() string {
	return fe.path
}

// Check creates the log directory and opens the log file for append once,
// so an unusable sink is found before the first scan.
func (fe *FileExporter) Check() error {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	f, err := fe.open()
	if err != nil {
		return err
	}
	return f.Close()
}

func (fe *FileExporter) SendAlert(alert utils.AlertRecord) error {
	return fe.appendLine(FormatAlertLine(alert))
}

// SendDebug is a no-op, debug lines are console only.
func (fe *FileExporter) SendDebug(_ int, _, _ string) {}

func (fe *FileExporter) appendLine(line string) error {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	f, err := fe.open()
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", fe.path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync %s: %w", fe.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", fe.path, err)
	}
	return nil
}

// open must be called with fe.mu held.
func (fe *FileExporter) open() (afero.File, error) {
	if !fe.dirReady {
		if dir := filepath.Dir(fe.path); dir != "" {
			if err := fe.fs.MkdirAll(dir, logDirPerm); err != nil {
				return nil, fmt.Errorf("create log directory %s: %w", dir, err)
			}
		}
		fe.dirReady = true
	}
	f, err := fe.fs.OpenFile(fe.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fe.path, err)
	}
	return f, nil
}
