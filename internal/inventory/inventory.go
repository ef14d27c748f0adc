package inventory

import (
	"fmt"
	"path"

	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/pkg/logging"
)

const subsystem = "inventory"

// Options configures device resolution beyond the required-field contract.
type Options struct {
	// ExcludePatterns filters the merged-data device map by device id (the
	// map key, shell-style "*" wildcard) before resolution runs, mirroring the
	// original's exclude_patterns override.
	ExcludePatterns []string
}

// Inventory resolves device entries out of merged configuration data.
type Inventory struct{}

// New returns an Inventory.
func New() *Inventory {
	return &Inventory{}
}

// Resolve reads data["devices"] (a map of device_id -> device fields) and
// returns the resolved DeviceRecords plus the skipped entries, with a
// reason, for devices missing required fields.
func (inv *Inventory) Resolve(data map[string]interface{}, opts Options) ([]model.DeviceRecord, []model.SkippedDevice) {
	devicesRaw, _ := data["devices"].(map[string]interface{})

	var records []model.DeviceRecord
	var skipped []model.SkippedDevice

	for deviceID, raw := range devicesRaw {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			skipped = append(skipped, model.SkippedDevice{DeviceID: deviceID, Reason: "device entry is not a mapping"})
			continue
		}

		if matchesAny(opts.ExcludePatterns, deviceID) {
			continue
		}

		record, reason := resolveRecord(deviceID, fields)
		if reason != "" {
			logging.Warn(subsystem, "skipping device %s: %s", deviceID, reason)
			skipped = append(skipped, model.SkippedDevice{DeviceID: deviceID, Reason: reason})
			continue
		}
		records = append(records, record)
	}

	return records, skipped
}

func resolveRecord(deviceID string, fields map[string]interface{}) (model.DeviceRecord, string) {
	hostname, _ := fields["hostname"].(string)
	host, _ := fields["host"].(string)
	os_, _ := fields["os"].(string)
	username, _ := fields["username"].(string)
	password, _ := fields["password"].(string)

	var missing []string
	if hostname == "" {
		missing = append(missing, "hostname")
	}
	if host == "" {
		missing = append(missing, "host")
	}
	if os_ == "" {
		missing = append(missing, "os")
	}
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return model.DeviceRecord{}, fmt.Sprintf("missing required field(s): %v", missing)
	}

	record := model.DeviceRecord{
		DeviceID: deviceID,
		Hostname: hostname,
		Host:     host,
		OS:       os_,
		Username: username,
		Password: password,
	}
	if v, ok := fields["platform"].(string); ok {
		record.Platform = v
	}
	if v, ok := fields["model"].(string); ok {
		record.Model = v
	}
	if v, ok := fields["series"].(string); ok {
		record.Series = v
	}
	if v, ok := fields["command"].(string); ok {
		record.Command = v
	}
	if v, ok := fields["port"].(int); ok {
		record.Port = v
	}
	if v, ok := fields["connection_options"].(map[string]interface{}); ok {
		record.ConnectionOptions = v
	}
	if v, ok := fields["ssh_options"].(map[string]interface{}); ok {
		opts := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				opts[k] = s
			}
		}
		record.SSHOptions = opts
	}

	return record, ""
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
