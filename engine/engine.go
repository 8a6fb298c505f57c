package engine

import (
	"fmt"
	"sync"

	"github.com/hack-pad/hackpadfs"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/renderer"
	"github.com/spaghettifunk/anima-assets/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	app           *ApplicationConfig
	systemManager *systems.SystemManager
	clock         *core.Clock

	mutex   sync.Mutex
	quit    chan struct{}
	running sync.WaitGroup

	shutdownOnce sync.Once
	shutdownErr  error

	// bundles loaded on Run, by cache key
	loaded map[string]assets.Bundle
}

// New configures logging and wires every system. fsys replaces the host
// filesystem when not nil.
func New(app *ApplicationConfig, fsys hackpadfs.FS) (*Engine, error) {
	if app.Config == nil {
		app.Config = core.DefaultConfig()
	}
	if err := core.SetLogLevel(app.Config.Log.Level); err != nil {
		return nil, err
	}
	core.SetLogReportCaller(app.Config.Log.ReportCaller)

	sm, err := systems.NewSystemManager(app.Config, fsys)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage:  EngineStageInitialized,
		app:           app,
		systemManager: sm,
		clock:         core.NewClock(),
		quit:          make(chan struct{}),
		loaded:        make(map[string]assets.Bundle),
	}, nil
}

func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

// Run loads every configured asset across the job system, optionally writes
// the first one back out, realizes them all on the renderer and dumps the
// cache. With watching enabled it then blocks until Shutdown, reloading
// assets whose files change.
func (e *Engine) Run() error {
	e.mutex.Lock()
	if e.currentStage != EngineStageInitialized {
		e.mutex.Unlock()
		return fmt.Errorf("engine cannot run in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.running.Add(1)
	e.mutex.Unlock()
	defer e.running.Done()

	e.clock.Start()
	rs := e.systemManager.ResourceSystem()
	bundles, err := rs.Preload(e.app.Assets, systems.DefaultTextureLoadParams())
	if err != nil {
		core.LogWarn("some assets failed to load: %v", err)
	}
	e.clock.Update()
	core.LogInfo("%s: loaded %d asset(s) in %s", e.app.Name, len(bundles), e.clock.Elapsed())

	var loaded []assets.Bundle
	e.mutex.Lock()
	for _, b := range bundles {
		if !b.IsEmpty() {
			loaded = append(loaded, b)
			e.loaded[b.CacheKey()] = b
		}
	}
	e.mutex.Unlock()

	// Writing reads the CPU payload, so it happens before realization
	// converts the assets to dummies.
	if e.app.WriteTarget != "" {
		if len(loaded) == 0 {
			core.LogWarn("nothing loaded, '%s' not written", e.app.WriteTarget)
		} else if err := rs.Write(e.app.WriteTarget, assets.WriteParams{RootAsset: loaded[0].First()}); err != nil {
			core.LogError("writing '%s' failed: %v", e.app.WriteTarget, err)
		} else {
			core.LogInfo("'%s' written to '%s'", loaded[0].CacheKey(), e.app.WriteTarget)
		}
	}

	for _, b := range loaded {
		e.realize(b)
	}

	if e.app.Output != nil {
		if err := rs.Manager().DumpDebug(e.app.Output); err != nil {
			return err
		}
	}
	snap := rs.Manager().Metrics()
	core.LogInfo("cache hits %d, misses %d, loads %d, load failures %d, average load %.2fms",
		snap.CacheHits, snap.CacheMisses, snap.Loads, snap.LoadFailures, snap.LoadMSAvg)

	if !e.app.Config.Assets.Watch {
		return nil
	}

	events := e.systemManager.Events()
	events.Register(core.EVENT_CODE_ASSET_FILE_CHANGED, e, e.onFileChanged)
	defer events.Unregister(core.EVENT_CODE_ASSET_FILE_CHANGED, e, e.onFileChanged)

	core.LogInfo("%s: watching for changes, interrupt to quit", e.app.Name)
	<-e.quit
	return nil
}

func (e *Engine) realize(b assets.Bundle) {
	list := renderer.Realizable(b)
	if len(list) == 0 {
		return
	}
	if _, err := e.systemManager.Renderer().GPUObjectsFromAssets(list); err != nil {
		core.LogWarn("'%s' only partially realized: %v", b.CacheKey(), err)
	}
}

// release destroys the GPU objects of the assets in b that were loaded from
// key. Nested assets of other files stay realized.
func (e *Engine) release(b assets.Bundle, key string) {
	r := e.systemManager.Renderer()
	for _, a := range renderer.Realizable(b) {
		if a.CacheKey() == key && r.Release(a) {
			core.LogDebug("'%s' released from the gpu", key)
		}
	}
}

func (e *Engine) onFileChanged(code core.EventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	old, ok := e.loaded[data.Key]
	if !ok {
		return false
	}
	e.release(old, data.Key)
	e.loaded[data.Key] = assets.Bundle{}

	b, err := e.systemManager.ResourceSystem().Load(data.Key, systems.DefaultTextureLoadParams())
	if err != nil {
		core.LogWarn("'%s' changed but could not be reloaded: %v", data.Key, err)
		return false
	}
	e.realize(b)
	e.loaded[data.Key] = b
	core.LogInfo("'%s' reloaded", data.Key)
	return false
}

// Shutdown stops a blocked Run and tears the systems down. Later calls wait
// for the first one and return its result.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.mutex.Lock()
		e.currentStage = EngineStageShuttingDown
		close(e.quit)
		e.mutex.Unlock()

		e.running.Wait()
		e.shutdownErr = e.systemManager.Shutdown()
	})
	return e.shutdownErr
}
