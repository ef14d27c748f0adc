package testbed

import (
	"os"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
	"gopkg.in/yaml.v3"
)

// Builder produces testbed descriptors from resolved device records,
// honoring a user-supplied base testbed when present.
type Builder struct{}

// New returns a Builder.
func New() *Builder {
	return &Builder{}
}

// LoadBase reads a user-supplied base testbed file. A missing path is not
// an error: callers get a minimal skeleton instead.
func (b *Builder) LoadBase(path string) (*model.Testbed, error) {
	if path == "" {
		return model.NewTestbed(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.NewTestbed(), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ConfigurationError, "read base testbed", "testbed", path, err)
	}

	tb := model.NewTestbed()
	if err := yaml.Unmarshal(data, tb); err != nil {
		return nil, errs.Wrap(errs.ConfigurationError, "parse base testbed", "testbed", path, err)
	}
	if tb.Devices == nil {
		tb.Devices = make(map[string]interface{})
	}
	return tb, nil
}

// SingleDevice produces a testbed for one device's per-device worker. If
// base already has an entry for device's hostname, that entry passes
// through untouched; otherwise an auto-generated entry is inserted.
func (b *Builder) SingleDevice(base *model.Testbed, device model.DeviceRecord) *model.Testbed {
	tb := cloneTestbed(base)
	if _, exists := tb.Devices[device.Hostname]; !exists {
		tb.Devices[device.Hostname] = autoGeneratedEntry(device)
	}
	return tb
}

// Consolidated produces a testbed covering every device, for the broker.
// User entries win; auto-generated entries fill in the rest.
func (b *Builder) Consolidated(base *model.Testbed, devices []model.DeviceRecord) *model.Testbed {
	tb := cloneTestbed(base)
	for _, device := range devices {
		if _, exists := tb.Devices[device.Hostname]; exists {
			continue
		}
		tb.Devices[device.Hostname] = autoGeneratedEntry(device)
	}
	return tb
}

func cloneTestbed(base *model.Testbed) *model.Testbed {
	if base == nil {
		return model.NewTestbed()
	}
	tb := &model.Testbed{
		Name:        base.Name,
		Credentials: base.Credentials,
		Devices:     make(map[string]interface{}, len(base.Devices)),
		Extra:       base.Extra,
	}
	for k, v := range base.Devices {
		tb.Devices[k] = v
	}
	return tb
}

// autoGeneratedEntry builds the device map contract: alias, os, type,
// credentials, connections.cli, optional platform/model/series/ssh_options,
// and a settings block disabling post-disconnect wait.
func autoGeneratedEntry(device model.DeviceRecord) map[string]interface{} {
	entry := map[string]interface{}{
		"alias": device.Hostname,
		"os":    device.OS,
		"type":  "router",
		"credentials": map[string]interface{}{
			"default": map[string]interface{}{
				"username": device.Username,
				"password": device.Password,
			},
		},
		"connections": map[string]interface{}{
			"cli": cliBlock(device),
		},
		"settings": map[string]interface{}{
			"POST_DISCONNECT_WAIT_SEC": 0,
		},
	}

	if device.Platform != "" {
		entry["platform"] = device.Platform
	}
	if device.Model != "" {
		entry["model"] = device.Model
	}
	if device.Series != "" {
		entry["series"] = device.Series
	}
	if len(device.SSHOptions) > 0 {
		entry["ssh_options"] = device.SSHOptions
	}

	return entry
}

func cliBlock(device model.DeviceRecord) map[string]interface{} {
	if device.Command != "" {
		return map[string]interface{}{
			"command": device.Command,
			"arguments": map[string]interface{}{
				"init_config_commands": []string{},
				"operating_mode":       true,
			},
		}
	}

	port := device.Port
	if port == 0 {
		port = 22
	}
	protocol := "ssh"
	block := map[string]interface{}{
		"protocol":  protocol,
		"ip":        device.Host,
		"port":      port,
		"arguments": map[string]interface{}{},
	}

	if len(device.ConnectionOptions) > 0 {
		for k, v := range device.ConnectionOptions {
			block[k] = v
		}
	}

	return block
}
