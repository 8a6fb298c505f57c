package assets

import (
	"fmt"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

// GPUObject is an opaque handle to a GPU resident counterpart of an asset.
// Implementations must be comparable, typically pointers.
type GPUObject interface {
	GPUHandle() core.Identifier
}

// ConvertAssetToEmptyCacheHandle records gpuObject as the realization of
// asset, takes a strong reference on asset so it stays valid as a key, and
// only then releases the asset's CPU payload.
//
// The association is stored alongside any previous one for the same asset;
// FindGPUObject keeps returning the oldest.
func (m *Manager) ConvertAssetToEmptyCacheHandle(asset Asset, gpuObject GPUObject) error {
	if asset == nil {
		return fmt.Errorf("%w: nil asset", core.ErrInvalidAsset)
	}
	if gpuObject == nil {
		return fmt.Errorf("%w: nil gpu object for asset '%s'", core.ErrInvalidGPUObject, asset.CacheKey())
	}
	ix := asset.Type().Index()
	if ix < 0 {
		return fmt.Errorf("%w: asset '%s' has no single type", core.ErrInvalidAsset, asset.CacheKey())
	}

	asset.Grab()
	if !m.gpuCache[ix].Insert(asset, gpuObject) {
		asset.Drop()
		return fmt.Errorf("%w: asset '%s' already mapped to this gpu object", core.ErrInvalidGPUObject, asset.CacheKey())
	}
	asset.ConvertToDummy()
	return nil
}

// FindGPUObject returns the GPU object cached for asset.
func (m *Manager) FindGPUObject(asset Asset) (GPUObject, bool) {
	if asset == nil {
		return nil, false
	}
	ix := asset.Type().Index()
	if ix < 0 {
		return nil, false
	}
	return m.gpuCache[ix].FindFirst(asset)
}

// RemoveCachedGPUObject forgets the asset to gpuObject association and drops
// the reference taken when it was recorded. The asset stays a dummy.
func (m *Manager) RemoveCachedGPUObject(asset Asset, gpuObject GPUObject) bool {
	if asset == nil || gpuObject == nil {
		return false
	}
	ix := asset.Type().Index()
	if ix < 0 {
		return false
	}
	if !m.gpuCache[ix].RemoveObject(gpuObject, asset) {
		return false
	}
	asset.Drop()
	return true
}

// GPUObjectCount is the number of cached associations for the types in mask.
func (m *Manager) GPUObjectCount(mask Type) int {
	n := 0
	mask.Each(func(t Type) {
		n += m.gpuCache[t.Index()].Size()
	})
	return n
}
