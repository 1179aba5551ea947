package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSceneWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "scene.toml")
	writeFile(t, manifest, "roots = []\n")

	sw, err := NewSceneWatcher(manifest, 50*time.Millisecond)
	require.NoError(t, err)
	defer sw.Close()

	for i := 0; i < 5; i++ {
		writeFile(t, manifest, "roots = []\n# edit\n")
	}

	select {
	case path := <-sw.Changes():
		abs, err := filepath.Abs(manifest)
		require.NoError(t, err)
		assert.Equal(t, abs, path)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification for the manifest")
	}

	// The burst was delivered once.
	time.Sleep(150 * time.Millisecond)
	_, ok := sw.Poll()
	assert.False(t, ok)
}

func TestSceneWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "scene.toml")
	writeFile(t, manifest, "roots = []\n")

	sw, err := NewSceneWatcher(manifest, 20*time.Millisecond)
	require.NoError(t, err)
	defer sw.Close()

	writeFile(t, filepath.Join(dir, "cube.pnct"), "not a manifest")

	time.Sleep(200 * time.Millisecond)
	_, ok := sw.Poll()
	assert.False(t, ok)
}

func TestSceneWatcherCloseTwice(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "scene.toml")
	writeFile(t, manifest, "roots = []\n")

	sw, err := NewSceneWatcher(manifest, time.Millisecond)
	require.NoError(t, err)

	assert.NoError(t, sw.Close())
	assert.ErrorIs(t, sw.Close(), ErrWatcherClosed)
}

func TestSceneWatcherMissingDirectory(t *testing.T) {
	_, err := NewSceneWatcher(filepath.Join(t.TempDir(), "missing", "scene.toml"), time.Millisecond)
	assert.Error(t, err)
}
