package systems

import (
	"errors"

	"github.com/hack-pad/hackpadfs"

	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/renderer"
)

type SystemManager struct {
	Config *core.Config

	events         *core.EventBus
	jobSystem      *JobSystem
	resourceSystem *ResourceSystem
	renderer       *renderer.Renderer
	textureSystem  *TextureSystem
}

// NewSystemManager wires every system from config. fsys replaces the host
// filesystem when not nil.
func NewSystemManager(config *core.Config, fsys hackpadfs.FS) (*SystemManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sm := &SystemManager{
		Config: config,
		events: core.NewEventBus(),
	}

	js, err := NewJobSystem(config.Jobs.Workers, config.Jobs.QueueSize)
	if err != nil {
		return nil, err
	}
	sm.jobSystem = js

	rs, err := NewResourceSystem(&ResourceSystemConfig{
		Assets:     config.Assets,
		FileSystem: fsys,
		Events:     sm.events,
	}, js)
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	sm.resourceSystem = rs

	sm.renderer = renderer.New(rs.Manager(), renderer.NewHeadlessBackend(config.Renderer.MaxTextures))

	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.Renderer.MaxTextures,
		LoadParams:      DefaultTextureLoadParams(),
	}, rs, sm.renderer)
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	if err := ts.Initialize(); err != nil {
		sm.Shutdown()
		return nil, err
	}
	sm.textureSystem = ts

	return sm, nil
}

func (sm *SystemManager) Events() *core.EventBus          { return sm.events }
func (sm *SystemManager) JobSystem() *JobSystem           { return sm.jobSystem }
func (sm *SystemManager) ResourceSystem() *ResourceSystem { return sm.resourceSystem }
func (sm *SystemManager) Renderer() *renderer.Renderer    { return sm.renderer }
func (sm *SystemManager) TextureSystem() *TextureSystem   { return sm.textureSystem }

// Shutdown stops the systems in reverse wiring order. Systems that were never
// created are skipped, and every error is reported.
func (sm *SystemManager) Shutdown() error {
	var errs []error
	if sm.textureSystem != nil {
		errs = append(errs, sm.textureSystem.Shutdown())
		sm.textureSystem = nil
	}
	if sm.renderer != nil {
		errs = append(errs, sm.renderer.Shutdown())
		sm.renderer = nil
	}
	if sm.resourceSystem != nil {
		errs = append(errs, sm.resourceSystem.Shutdown())
		sm.resourceSystem = nil
	}
	if sm.jobSystem != nil {
		errs = append(errs, sm.jobSystem.Shutdown())
		sm.jobSystem = nil
	}
	return errors.Join(errs...)
}
