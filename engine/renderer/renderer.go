package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// Renderer realizes CPU assets on a Backend and records the results in the
// manager's CPU to GPU cache.
type Renderer struct {
	backend Backend
	manager *assets.Manager

	// serializes find-or-create so an asset is realized once
	mu sync.Mutex
}

func New(manager *assets.Manager, backend Backend) *Renderer {
	return &Renderer{
		backend: backend,
		manager: manager,
	}
}

func (r *Renderer) Backend() Backend {
	return r.backend
}

// GPUObjectsFromAssets returns one GPU object per input asset, in order. An
// asset already realized yields its cached object. Otherwise the object is
// created through the backend, and only once it exists is the asset turned
// into an empty cache handle. Assets that fail leave a nil entry and
// contribute to the joined error.
func (r *Renderer) GPUObjectsFromAssets(list []assets.Asset) ([]assets.GPUObject, error) {
	out := make([]assets.GPUObject, len(list))
	var errs []error
	for i, a := range list {
		g, err := r.realize(a)
		if err != nil {
			core.LogWarn("gpu realization failed: %v", err)
			errs = append(errs, err)
			continue
		}
		out[i] = g
	}
	return out, errors.Join(errs...)
}

func (r *Renderer) realize(a assets.Asset) (assets.GPUObject, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil asset", core.ErrInvalidAsset)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.manager.FindGPUObject(a); ok {
		return g, nil
	}
	var (
		g   assets.GPUObject
		err error
	)
	if !a.ReadPayload(func() { g, err = r.create(a) }) {
		return nil, fmt.Errorf("%w: '%s' was released without a gpu object", core.ErrInvalidAsset, a.CacheKey())
	}
	if err != nil {
		return nil, err
	}
	if err := r.manager.ConvertAssetToEmptyCacheHandle(a, g); err != nil {
		r.destroy(g)
		return nil, err
	}
	return g, nil
}

func (r *Renderer) create(a assets.Asset) (assets.GPUObject, error) {
	switch v := a.(type) {
	case *assets.Texture:
		t, err := r.backend.TextureCreate(v)
		if err != nil {
			return nil, err
		}
		return t, nil
	case *assets.Mesh:
		g, err := r.backend.GeometryCreate(v)
		if err != nil {
			return nil, err
		}
		return g, nil
	case *assets.Shader:
		s, err := r.backend.ShaderCreate(v)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s asset '%s' has no gpu representation", core.ErrInvalidAsset, a.Type(), a.CacheKey())
}

func (r *Renderer) destroy(g assets.GPUObject) {
	switch v := g.(type) {
	case *Texture:
		r.backend.TextureDestroy(v)
	case *Geometry:
		r.backend.GeometryDestroy(v)
	case *ShaderModule:
		r.backend.ShaderDestroy(v)
	default:
		core.LogWarn("unknown gpu object %T not destroyed", g)
	}
}

// Release removes the asset's CPU to GPU association and destroys the GPU
// object. The asset itself stays a dummy.
func (r *Renderer) Release(a assets.Asset) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.manager.FindGPUObject(a)
	if !ok {
		return false
	}
	if !r.manager.RemoveCachedGPUObject(a, g) {
		return false
	}
	r.destroy(g)
	return true
}

// Shutdown destroys whatever the backend still holds. The manager should be
// closed afterwards to drop the CPU keys of the GPU cache.
func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// Realizable flattens a bundle into the assets that have a GPU
// representation, following material maps, mesh materials and font pages.
// Each asset appears once.
func Realizable(bundle assets.Bundle) []assets.Asset {
	var out []assets.Asset
	seen := make(map[assets.Asset]struct{})
	add := func(a assets.Asset) {
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	addMaps := func(m *assets.Material) {
		if m == nil {
			return
		}
		m.ReadPayload(func() {
			for _, t := range m.Maps() {
				add(t)
			}
		})
	}

	for _, a := range bundle.Contents() {
		switch v := a.(type) {
		case *assets.Texture, *assets.Shader:
			add(v)
		case *assets.Mesh:
			add(v)
			v.ReadPayload(func() { addMaps(v.Material) })
		case *assets.Material:
			addMaps(v)
		case *assets.Font:
			v.ReadPayload(func() {
				for _, p := range v.Pages {
					if p.Texture != nil {
						add(p.Texture)
					}
				}
			})
		}
	}
	return out
}
