package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiTestBody = `
import nac_test

class VerifyBGP(APICTestBase):
    groups = ["health"]

    @aetest.test
    def test_bgp(self):
        pass
`

const notATestBody = `
def helper():
    pass
`

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "verify_bgp.py"), []byte(apiTestBody), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "helpers.py"), []byte(notATestBody), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "_private.py"), []byte(apiTestBody), 0o644))

	pycache := filepath.Join(root, "__pycache__")
	require.NoError(t, os.MkdirAll(pycache, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pycache, "verify_bgp.cpython.py"), []byte(apiTestBody), 0o644))

	d2dDir := filepath.Join(root, "d2d")
	require.NoError(t, os.MkdirAll(d2dDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d2dDir, "verify_ospf.py"), []byte(`
import nac_test

class VerifyOSPF(SSHTestBase):
    groups = ["routing"]

    @aetest.test
    def test_ospf(self):
        pass
`), 0o644))

	return root
}

func TestDiscoverBuildsPlan(t *testing.T) {
	root := setupTree(t)
	d := New(root)

	plan, err := d.Discover()
	require.NoError(t, err)

	assert.Len(t, plan.APITests, 1)
	assert.Len(t, plan.D2DTests, 1)
	assert.Equal(t, "verify_bgp.py", filepath.Base(plan.APITests[0].Path))
	assert.Equal(t, "verify_ospf.py", filepath.Base(plan.D2DTests[0].Path))

	var skippedNames []string
	for _, s := range plan.SkippedFiles {
		skippedNames = append(skippedNames, filepath.Base(s.Path))
	}
	assert.Contains(t, skippedNames, "helpers.py")
	assert.NotContains(t, skippedNames, "_private.py")
}

func TestDiscoverExcludesDir(t *testing.T) {
	root := setupTree(t)
	d := New(root, WithExcludeDirs([]string{filepath.Join(root, "d2d")}))

	plan, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, plan.D2DTests)
}

func TestHasTestsFastPath(t *testing.T) {
	root := setupTree(t)
	d := New(root)
	assert.True(t, d.HasTests())

	empty := t.TempDir()
	assert.False(t, New(empty).HasTests())
}

func TestDiscoverAppliesTagFilter(t *testing.T) {
	root := setupTree(t)
	d := New(root, WithTagFilter(NewTagFilter(nil, []string{"routing"})))

	plan, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, plan.D2DTests)
	assert.Equal(t, 1, plan.FilteredCount)
}
