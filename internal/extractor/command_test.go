package extractor

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandExtractor_SubstitutesModule(t *testing.T) {
	requireShell(t)
	ext, err := NewCommandExtractor([]string{"sh", "-c", "printf '# %s\\n' " + ModulePlaceholder}, "", nil)
	require.NoError(t, err)

	out, err := ext.Extract(context.Background(), "tenta.types")
	require.NoError(t, err)
	assert.Equal(t, "# tenta.types\n", out)
}

func TestCommandExtractor_RunsInDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	ext, err := NewCommandExtractor([]string{"sh", "-c", "pwd"}, dir, nil)
	require.NoError(t, err)

	out, err := ext.Extract(context.Background(), "x")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestCommandExtractor_NonZeroExit(t *testing.T) {
	requireShell(t)
	ext, err := NewCommandExtractor([]string{"sh", "-c", "echo 'no module named " + ModulePlaceholder + "' >&2; exit 3"}, "", nil)
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), "tenta.nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no module named tenta.nope")
}

func TestCommandExtractor_MissingBinary(t *testing.T) {
	ext, err := NewCommandExtractor([]string{"docsync-definitely-not-installed"}, "", nil)
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), "x")
	require.Error(t, err)
}

func TestNewCommandExtractor_EmptyCommand(t *testing.T) {
	_, err := NewCommandExtractor(nil, "", nil)
	require.Error(t, err)
}
