package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveValidDevice(t *testing.T) {
	data := map[string]interface{}{
		"devices": map[string]interface{}{
			"leaf-01": map[string]interface{}{
				"hostname": "leaf-01",
				"host":     "10.0.0.1",
				"os":       "nxos",
				"username": "admin",
				"password": "secret",
				"platform": "n9k",
			},
		},
	}

	inv := New()
	records, skipped := inv.Resolve(data, Options{})
	require.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "leaf-01", records[0].Hostname)
	assert.Equal(t, "n9k", records[0].Platform)
}

func TestResolveSkipsMissingRequiredFields(t *testing.T) {
	data := map[string]interface{}{
		"devices": map[string]interface{}{
			"leaf-02": map[string]interface{}{
				"hostname": "leaf-02",
				"os":       "nxos",
			},
		},
	}

	inv := New()
	records, skipped := inv.Resolve(data, Options{})
	assert.Empty(t, records)
	require.Len(t, skipped, 1)
	assert.Equal(t, "leaf-02", skipped[0].DeviceID)
}

func TestResolveExcludePattern(t *testing.T) {
	data := map[string]interface{}{
		"devices": map[string]interface{}{
			"spine-01": map[string]interface{}{
				"hostname": "spine-01", "host": "10.0.0.2", "os": "nxos", "username": "a", "password": "b",
			},
			"leaf-03": map[string]interface{}{
				"hostname": "leaf-03", "host": "10.0.0.3", "os": "nxos", "username": "a", "password": "b",
			},
		},
	}

	inv := New()
	records, _ := inv.Resolve(data, Options{ExcludePatterns: []string{"spine-*"}})
	require.Len(t, records, 1)
	assert.Equal(t, "leaf-03", records[0].DeviceID)
}

func TestResolveOptionalFieldsPassThrough(t *testing.T) {
	data := map[string]interface{}{
		"devices": map[string]interface{}{
			"router-01": map[string]interface{}{
				"hostname": "router-01", "host": "10.0.0.4", "os": "ios",
				"username": "a", "password": "b", "command": "ssh-stub",
				"ssh_options": map[string]interface{}{"StrictHostKeyChecking": "no"},
			},
		},
	}

	inv := New()
	records, skipped := inv.Resolve(data, Options{})
	require.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "ssh-stub", records[0].Command)
	assert.Equal(t, "no", records[0].SSHOptions["StrictHostKeyChecking"])
}

func TestResolveNoDevicesKey(t *testing.T) {
	inv := New()
	records, skipped := inv.Resolve(map[string]interface{}{}, Options{})
	assert.Empty(t, records)
	assert.Empty(t, skipped)
}
