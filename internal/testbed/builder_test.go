package testbed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netascode/nac-test-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceFixture() model.DeviceRecord {
	return model.DeviceRecord{
		DeviceID: "leaf-01",
		Hostname: "leaf-01",
		Host:     "10.0.0.1",
		OS:       "nxos",
		Username: "admin",
		Password: "secret",
	}
}

func TestLoadBaseMissingFileReturnsSkeleton(t *testing.T) {
	b := New()
	tb, err := b.LoadBase(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tb.Devices)
}

func TestLoadBaseParsesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
devices:
  leaf-01:
    alias: custom-leaf
    os: nxos
`), 0o644))

	b := New()
	tb, err := b.LoadBase(path)
	require.NoError(t, err)
	require.Contains(t, tb.Devices, "leaf-01")
}

func TestSingleDeviceAutoGeneratesEntry(t *testing.T) {
	b := New()
	tb := b.SingleDevice(model.NewTestbed(), deviceFixture())

	entry, ok := tb.Devices["leaf-01"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "leaf-01", entry["alias"])
	assert.Equal(t, "router", entry["type"])

	connections := entry["connections"].(map[string]interface{})
	cli := connections["cli"].(map[string]interface{})
	assert.Equal(t, "ssh", cli["protocol"])
	assert.Equal(t, 22, cli["port"])

	settings := entry["settings"].(map[string]interface{})
	assert.Equal(t, 0, settings["POST_DISCONNECT_WAIT_SEC"])
}

func TestSingleDeviceUserEntryWins(t *testing.T) {
	base := model.NewTestbed()
	userEntry := map[string]interface{}{"alias": "user-defined"}
	base.Devices["leaf-01"] = userEntry

	b := New()
	tb := b.SingleDevice(base, deviceFixture())

	assert.Equal(t, userEntry, tb.Devices["leaf-01"])
}

func TestConsolidatedSkipsUserHostnames(t *testing.T) {
	base := model.NewTestbed()
	userEntry := map[string]interface{}{"alias": "user-defined"}
	base.Devices["leaf-01"] = userEntry

	devices := []model.DeviceRecord{
		deviceFixture(),
		{DeviceID: "leaf-02", Hostname: "leaf-02", Host: "10.0.0.2", OS: "nxos", Username: "admin", Password: "secret"},
	}

	b := New()
	tb := b.Consolidated(base, devices)

	assert.Equal(t, userEntry, tb.Devices["leaf-01"])
	assert.Contains(t, tb.Devices, "leaf-02")
}

func TestCommandDeviceUsesCommandCLIBlock(t *testing.T) {
	device := deviceFixture()
	device.Command = "ssh-proxy-stub"

	b := New()
	tb := b.SingleDevice(model.NewTestbed(), device)

	entry := tb.Devices["leaf-01"].(map[string]interface{})
	cli := entry["connections"].(map[string]interface{})["cli"].(map[string]interface{})
	assert.Equal(t, "ssh-proxy-stub", cli["command"])
	assert.NotContains(t, cli, "protocol")
}

func TestConnectionOptionsOverrideProtocolAndPort(t *testing.T) {
	device := deviceFixture()
	device.ConnectionOptions = map[string]interface{}{"protocol": "telnet", "port": 2323}

	b := New()
	tb := b.SingleDevice(model.NewTestbed(), device)

	entry := tb.Devices["leaf-01"].(map[string]interface{})
	cli := entry["connections"].(map[string]interface{})["cli"].(map[string]interface{})
	assert.Equal(t, "telnet", cli["protocol"])
	assert.Equal(t, 2323, cli["port"])
}
