package probetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogScanValidateConfigRejectsMissingPath(t *testing.T) {
	err := (LogScan{}).ValidateConfig(map[string]any{
		"regex": "ERROR", "threshold": 3.0, "period": 60.0,
	})
	require.Error(t, err)
}

func TestLogScanValidateConfigRejectsBadRegex(t *testing.T) {
	err := (LogScan{}).ValidateConfig(map[string]any{
		"path": "/var/log/app.log", "regex": "(unterminated", "threshold": 3.0, "period": 60.0,
	})
	require.Error(t, err)
}

func TestLogScanValidateConfigAcceptsWellFormedConfig(t *testing.T) {
	err := (LogScan{}).ValidateConfig(map[string]any{
		"path": "/var/log/app.log", "regex": "ERROR", "threshold": 3.0, "period": 60.0,
	})
	require.NoError(t, err)
}

func TestLogScanRunsInTenantSandbox(t *testing.T) {
	assert.False(t, (LogScan{}).RunInGlobal())
}

func TestMachineUpRunsInGlobalZone(t *testing.T) {
	assert.True(t, (MachineUp{}).RunInGlobal())
}

func TestMachineUpValidateConfigAllowsEmptyConfig(t *testing.T) {
	assert.NoError(t, (MachineUp{}).ValidateConfig(map[string]any{}))
}

func TestMachineUpValidateConfigRejectsNonPositiveInterval(t *testing.T) {
	err := (MachineUp{}).ValidateConfig(map[string]any{"interval": 0.0})
	require.Error(t, err)
}

func TestRegistryLookupFindsRegisteredTypes(t *testing.T) {
	reg := DefaultRegistry()

	logscan, ok := reg.Lookup("logscan")
	require.True(t, ok)
	assert.False(t, logscan.RunInGlobal())

	machineup, ok := reg.Lookup("machineup")
	require.True(t, ok)
	assert.True(t, machineup.RunInGlobal())

	_, ok = reg.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestRegistryInstantiateRejectsUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Instantiate("nonexistent", map[string]any{}, nil)
	require.Error(t, err)
}

func TestRegistryInstantiateBuildsRunnableInstance(t *testing.T) {
	reg := DefaultRegistry()
	inst, err := reg.Instantiate("machineup", map[string]any{"interval": 30.0}, nil)
	require.NoError(t, err)
	require.NoError(t, inst.Start())
	inst.Stop()
}
