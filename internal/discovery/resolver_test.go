package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netascode/nac-test-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveAPIBaseClass(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "verify_bgp.py", `
class VerifyBGP(APICTestBase):
    groups = ["health", "bgp"]
`)

	r := NewResolver()
	record, err := r.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, model.TestTypeAPI, record.TestType)
	assert.Equal(t, []string{"health", "bgp"}, record.Groups)
}

func TestResolveD2DBaseClass(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "verify_ospf.py", `
class VerifyOSPF(pyats.SSHTestBase):
    groups = ['routing']
`)

	r := NewResolver()
	record, err := r.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, model.TestTypeD2D, record.TestType)
	assert.Equal(t, []string{"routing"}, record.Groups)
}

func TestResolveDirectoryFallback(t *testing.T) {
	dir := t.TempDir()
	d2dDir := filepath.Join(dir, "d2d")
	require.NoError(t, os.MkdirAll(d2dDir, 0o755))
	path := writeTestFile(t, d2dDir, "verify_interfaces.py", `
class VerifyInterfaces(UnknownBase):
    pass
`)

	r := NewResolver()
	record, err := r.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, model.TestTypeD2D, record.TestType)
	assert.Empty(t, record.Groups)
}

func TestResolveDefaultsToAPIWithWarning(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "verify_mystery.py", `
class VerifyMystery(UnknownBase):
    pass
`)

	r := NewResolver()
	record, err := r.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTestType, record.TestType)
}

func TestResolveAnnotatedGroupsAssignment(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "verify_vlan.py", `
class VerifyVLAN(NACTestBase):
    groups: list[str] = ["vlan", "l2"]
`)

	r := NewResolver()
	record, err := r.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"vlan", "l2"}, record.Groups)
}

func TestResolveMissingFilePropagatesError(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve(filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}
