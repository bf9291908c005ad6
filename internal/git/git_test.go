package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiff(t *testing.T) {
	diff := `diff --git a/docs/pages/examples.mdx b/docs/pages/examples.mdx
index 1111111..2222222 100644
--- a/docs/pages/examples.mdx
+++ b/docs/pages/examples.mdx
@@ -3 +3 @@ Intro
-old
+new
@@ -10,0 +11,2 @@
+a
+b
diff --git a/docs/pages/index.mdx b/docs/pages/index.mdx
index 3333333..4444444 100644
--- a/docs/pages/index.mdx
+++ b/docs/pages/index.mdx
@@ -5,2 +4,0 @@
-gone
-gone
`
	changes, err := parseDiff([]byte(diff))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "docs/pages/examples.mdx", changes[0].Path)
	assert.Equal(t, []int{3, 11, 12}, changes[0].ChangedLines)
	assert.Equal(t, "docs/pages/index.mdx", changes[1].Path)
	assert.Empty(t, changes[1].ChangedLines)
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestChangedFiles(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	page := filepath.Join(dir, "index.mdx")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(page, []byte("one\ntwo\n"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("x\n"), 0644))
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "init")

	require.NoError(t, os.WriteFile(page, []byte("one\nTWO\n"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("y\n"), 0644))

	changes, err := ChangedFiles(context.Background(), dir, "HEAD", "index.mdx")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "index.mdx", changes[0].Path)
	assert.Equal(t, []int{2}, changes[0].ChangedLines)
}
