package systems

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/assets/loaders"
	"github.com/spaghettifunk/anima-assets/engine/assets/writers"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	Assets core.AssetsConfig
	/**
	 * @brief Replaces the host filesystem when set. BasePath is then resolved
	 * inside it and watching is not available.
	 */
	FileSystem hackpadfs.FS
	/** @brief Event bus shared with the other systems. Optional. */
	Events *core.EventBus
}

// ResourceSystem owns the asset manager and every default loader and writer.
type ResourceSystem struct {
	config    *ResourceSystemConfig
	manager   *assets.Manager
	override  assets.LoaderOverride
	watcher   *assets.Watcher
	jobSystem *JobSystem
}

func NewResourceSystem(config *ResourceSystemConfig, js *JobSystem) (*ResourceSystem, error) {
	if config.Assets.MaxHierarchyDepth == 0 {
		err := fmt.Errorf("%w: func NewResourceSystem - config.Assets.MaxHierarchyDepth must be > 0", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}

	opts := []assets.Option{
		assets.WithMaxHierarchyDepth(config.Assets.MaxHierarchyDepth),
	}
	if config.Events != nil {
		opts = append(opts, assets.WithEventBus(config.Events))
	}

	var baseDir string
	if config.FileSystem != nil {
		opts = append(opts, assets.WithFileSystem(config.FileSystem), assets.WithRoot(config.Assets.BasePath))
	} else {
		abs, err := filepath.Abs(config.Assets.BasePath)
		if err != nil {
			return nil, err
		}
		host := osfs.NewFS()
		root, err := host.FromOSPath(abs)
		if err != nil {
			return nil, err
		}
		baseDir = abs
		opts = append(opts, assets.WithFileSystem(host), assets.WithRoot(root))
	}

	m, err := assets.NewManager(opts...)
	if err != nil {
		return nil, err
	}
	loaders.RegisterDefaults(m)
	writers.RegisterDefaults(m)

	rs := &ResourceSystem{
		config:    config,
		manager:   m,
		jobSystem: js,
	}
	if len(config.Assets.SearchPaths) > 0 {
		rs.override = assets.NewSearchPathOverride(m, config.Assets.SearchPaths...)
	}

	if config.Assets.Watch {
		if baseDir == "" {
			core.LogWarn("asset watching needs the host filesystem, ignoring assets.watch")
		} else {
			w, err := assets.NewWatcher(m, baseDir)
			if err != nil {
				m.Close()
				return nil, err
			}
			if err := w.Start(); err != nil {
				w.Close()
				m.Close()
				return nil, err
			}
			rs.watcher = w
		}
	}

	core.LogInfo("Resource system initialized with base path '%s' (%d loaders, %d writers).",
		config.Assets.BasePath, m.LoaderCount(), m.WriterCount())

	return rs, nil
}

func (rs *ResourceSystem) Manager() *assets.Manager {
	return rs.manager
}

/**
 * @brief Loads the named asset, or returns it from the cache.
 * @param name The path of the asset relative to the base path.
 * @param params Load parameters; the zero value caches every level.
 * @return The loaded bundle, or an error wrapping core.ErrNotFound when nothing could be produced.
 */
func (rs *ResourceSystem) Load(name string, params assets.LoadParams) (assets.Bundle, error) {
	b := rs.manager.GetAsset(name, params, rs.override)
	if b.IsEmpty() {
		return b, fmt.Errorf("%w: could not load '%s'", core.ErrNotFound, name)
	}
	return b, nil
}

// Write serializes params.RootAsset to name, relative to the base path.
func (rs *ResourceSystem) Write(name string, params assets.WriteParams) error {
	return rs.manager.WriteAsset(name, params, nil)
}

// Preload loads every name on the job system and waits for all of them. The
// returned bundles follow the order of names; failed entries are empty.
func (rs *ResourceSystem) Preload(names []string, params assets.LoadParams) ([]assets.Bundle, error) {
	out := make([]assets.Bundle, len(names))
	if rs.jobSystem == nil {
		var errs []error
		for i, name := range names {
			b, err := rs.Load(name, params)
			if err != nil {
				errs = append(errs, err)
			}
			out[i] = b
		}
		return out, errors.Join(errs...)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i, name := range names {
		wg.Add(1)
		ok := rs.jobSystem.Submit(JobTask{
			InputParams: name,
			OnStart: func(input interface{}) (interface{}, error) {
				return rs.Load(input.(string), params)
			},
			OnComplete: func(result interface{}) {
				out[i] = result.(assets.Bundle)
			},
			OnFailure: func(err error) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
		if !ok {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("%w: preload of '%s' not scheduled", core.ErrNoWorkers, name))
			mu.Unlock()
		}
	}
	wg.Wait()

	return out, errors.Join(errs...)
}

func (rs *ResourceSystem) Shutdown() error {
	var err error
	if rs.watcher != nil {
		err = rs.watcher.Close()
	}
	rs.manager.Close()
	return err
}
