package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agorahq/agora/internal/setup/config"
	"github.com/agorahq/agora/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWritesSessionLogs(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	manager := telemetry.NewManager(telemetry.ServiceAPI, logDir, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 2,
		MaxLogLines:   100,
	}, false)

	mainLogger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	mainLogger.Info("server started")
	dbLogger.Debug("filtered out")
	require.NoError(t, mainLogger.Sync())
	manager.Stop()

	data, err := os.ReadFile(filepath.Join(manager.GetCurrentSessionDir(), "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "server started")
	assert.Contains(t, string(data), manager.GetInstanceID())

	data, err = os.ReadFile(filepath.Join(manager.GetCurrentSessionDir(), "database.log"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestManagerRejectsBadLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager(telemetry.ServiceDB, t.TempDir(), &config.Debug{LogLevel: "loud"}, false)
	_, _, err := manager.GetLoggers()
	require.Error(t, err)
}
