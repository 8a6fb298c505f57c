package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

// Watcher evicts cached bundles whose backing file changes on disk and
// announces the change on the manager's event bus.
type Watcher struct {
	manager *Manager
	baseDir string

	mutex    sync.Mutex
	isClosed bool
	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
}

// NewWatcher watches baseDir, the OS directory the manager's root maps to.
func NewWatcher(m *Manager, baseDir string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	return &Watcher{
		manager:  m,
		baseDir:  abs,
		done:     make(chan struct{}),
		fsnotify: fsWatch,
	}, nil
}

// Start registers baseDir and all its sub-directories and begins dispatching.
func (w *Watcher) Start() error {
	if err := w.watchRecursive(w.baseDir); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.start()
	core.LogInfo("watching '%s' for asset changes", w.baseDir)
	return nil
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handleEvent(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogWarn("asset watcher: cannot watch '%s': %v", e.Name, err)
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	// Can't stat a deleted directory, so removal is attempted for every path.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		_ = w.fsnotify.Remove(e.Name)
	}

	key, err := filepath.Rel(w.baseDir, e.Name)
	if err != nil {
		return
	}
	key = filepath.ToSlash(key)
	if evicted := w.manager.EvictKey(key); evicted > 0 {
		core.LogDebug("asset '%s' changed, evicted %d cached bundle(s)", key, evicted)
	}
	w.manager.Events().Fire(core.EVENT_CODE_ASSET_FILE_CHANGED, w, core.EventContext{Key: key})
}

// watchRecursive adds all directories under the given one to the watch list.
func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}
