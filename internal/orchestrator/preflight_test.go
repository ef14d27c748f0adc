package orchestrator

import (
	"testing"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGetenv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestPreflightExplicitControllerTypeSucceeds(t *testing.T) {
	getenv := fakeGetenv(map[string]string{
		"CONTROLLER_TYPE": "ACI",
		"ACI_URL":         "https://aci.example.com",
		"ACI_USERNAME":    "admin",
		"ACI_PASSWORD":    "secret",
	})

	creds, err := Preflight(getenv)
	require.NoError(t, err)
	assert.Equal(t, "ACI", creds.Type)
	assert.Equal(t, "https://aci.example.com", creds.URL)
}

func TestPreflightExplicitControllerTypeMissingVariable(t *testing.T) {
	getenv := fakeGetenv(map[string]string{
		"CONTROLLER_TYPE": "FMC",
		"FMC_URL":         "https://fmc.example.com",
		"FMC_USERNAME":    "admin",
	})

	_, err := Preflight(getenv)
	require.Error(t, err)
	assert.True(t, errs.OfKind(err, errs.ConfigurationError))
	assert.Contains(t, err.Error(), "FMC_PASSWORD")
}

func TestPreflightAutoDetectsFirstPopulatedTag(t *testing.T) {
	getenv := fakeGetenv(map[string]string{
		"MERAKI_URL":      "https://meraki.example.com",
		"MERAKI_USERNAME": "admin",
		"MERAKI_PASSWORD": "secret",
	})

	creds, err := Preflight(getenv)
	require.NoError(t, err)
	assert.Equal(t, "MERAKI", creds.Type)
}

func TestPreflightNoCredentialsAnywhere(t *testing.T) {
	_, err := Preflight(fakeGetenv(nil))
	require.Error(t, err)
	assert.True(t, errs.OfKind(err, errs.ConfigurationError))
	assert.Contains(t, err.Error(), "no controller credentials detected")
}
