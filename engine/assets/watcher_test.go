package assets

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

type changeRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *changeRecorder) onChange(code core.EventCode, sender, listener interface{}, data core.EventContext) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, data.Key)
	return false
}

func (r *changeRecorder) seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func TestWatcherHandleEvent(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, map[string]string{"meshes/model.mesh": "MESH"})
	m.AddAssetLoader(meshLoader())
	require.False(t, m.GetAsset("meshes/model.mesh", DefaultLoadParams(), nil).IsEmpty())

	rec := &changeRecorder{}
	m.Events().Register(core.EVENT_CODE_ASSET_FILE_CHANGED, rec, rec.onChange)

	w, err := NewWatcher(m, dir)
	require.NoError(t, err)
	defer w.Close()

	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "meshes", "model.mesh"), Op: fsnotify.Chmod})
	assert.Equal(t, 1, m.CachedCount(TypeMesh), "attribute changes are ignored")
	assert.False(t, rec.seen("meshes/model.mesh"))

	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "meshes", "model.mesh"), Op: fsnotify.Write})
	assert.Equal(t, 0, m.CachedCount(TypeMesh))
	assert.True(t, rec.seen("meshes/model.mesh"))
}

func TestWatcherEvictsOnDiskChange(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, map[string]string{"model.mesh": "MESH"})
	m.AddAssetLoader(meshLoader())
	require.False(t, m.GetAsset("model.mesh", DefaultLoadParams(), nil).IsEmpty())

	rec := &changeRecorder{}
	m.Events().Register(core.EVENT_CODE_ASSET_FILE_CHANGED, rec, rec.onChange)

	w, err := NewWatcher(m, dir)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.mesh"), []byte("MESH v2"), 0o644))
	require.Eventually(t, func() bool { return rec.seen("model.mesh") }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, m.CachedCount(TypeMesh))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
