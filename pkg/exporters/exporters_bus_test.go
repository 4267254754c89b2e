package exporters

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitExportersSinkUnavailable(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	bus, err := InitExporters(fs, SinkConfig{LogPath: testLogPath, Quiet: true}, ExportersConfig{})
	assert.Nil(t, bus)
	assert.True(t, errors.Is(err, ErrSinkUnavailable))
}

func TestExporterBusFanOut(t *testing.T) {
	t.Setenv("HTTP_ENDPOINT_URL", "")
	t.Setenv("SYSLOG_HOST", "")
	t.Setenv("EXPORTER_CSV_PATH", "")

	fs := afero.NewMemMapFs()
	var console bytes.Buffer
	bus, err := InitExporters(fs, SinkConfig{LogPath: testLogPath, Console: &console}, ExportersConfig{})
	require.NoError(t, err)

	bus.SendDebug(42, "sudo", "alice")
	require.NoError(t, bus.SendAlert(testAlert()))
	require.NoError(t, bus.Close())

	data, err := afero.ReadFile(fs, testLogPath)
	require.NoError(t, err)
	// debug lines never reach the alert log
	assert.Equal(t, FormatAlertLine(testAlert())+"\n", string(data))
	assert.Equal(t, "DEBUG: PID=42, NAME=sudo, USER=alice\n"+FormatAlertLine(testAlert())+"\n", console.String())
}

func TestExporterBusSecondaryFailureIsNotFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	failing := &ExporterMock{Err: errors.New("receiver down")}
	recording := &ExporterMock{}
	bus := NewExporterBus(InitFileExporter(fs, testLogPath), failing, recording)

	require.NoError(t, bus.SendAlert(testAlert()))
	assert.Len(t, recording.Alerts(), 1)
}

func TestExporterBusFileFailureIsFatal(t *testing.T) {
	recording := &ExporterMock{}
	bus := NewExporterBus(InitFileExporter(afero.NewReadOnlyFs(afero.NewMemMapFs()), testLogPath), recording)

	err := bus.SendAlert(testAlert())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkUnavailable)
	assert.True(t, strings.Contains(err.Error(), "procguardian"))
	// nothing is echoed for an alert that was not persisted
	assert.Empty(t, recording.Alerts())
}
