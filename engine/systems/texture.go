package systems

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/anthonynsimon/bild/transform"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/renderer"
)

const (
	/** @brief The default texture name. */
	DefaultTextureName string = "default"
	/** @brief The size in pixels of the generated default texture. */
	DefaultTextureDimension int = 256
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Parameters used for every texture load. */
	LoadParams assets.LoadParams
}

// DefaultTextureLoadParams caches every level and clamps textures to 4096
// pixels per side.
func DefaultTextureLoadParams() assets.LoadParams {
	params := assets.DefaultLoadParams()
	params.MaxTextureDimension = 4096
	return params
}

type textureReference struct {
	referenceCount uint64
	autoRelease    bool
	bundle         assets.Bundle
	asset          assets.Asset
	texture        *renderer.Texture
}

type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *renderer.Texture

	mutex sync.Mutex
	// Hashtable for texture lookups by requested name.
	registeredTextureTable map[string]*textureReference
	defaultAsset           *assets.Texture

	resourceSystem *ResourceSystem
	renderer       *renderer.Renderer
}

func NewTextureSystem(config *TextureSystemConfig, rs *ResourceSystem, r *renderer.Renderer) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("%w: func NewTextureSystem - config.MaxTextureCount must be > 0", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		Config:                 config,
		registeredTextureTable: make(map[string]*textureReference),
		resourceSystem:         rs,
		renderer:               r,
	}
	return ts, nil
}

/**
 * @brief Creates the default texture on the renderer and starts listening
 * for changes to the files backing loaded textures.
 */
func (ts *TextureSystem) Initialize() error {
	ts.defaultAsset = assets.NewTexture(checkerboard(DefaultTextureDimension), "generated")
	objs, err := ts.renderer.GPUObjectsFromAssets([]assets.Asset{ts.defaultAsset})
	if err != nil {
		return err
	}
	ts.DefaultTexture = objs[0].(*renderer.Texture)
	ts.DefaultTexture.Name = DefaultTextureName

	ts.resourceSystem.Manager().Events().Register(core.EVENT_CODE_ASSET_FILE_CHANGED, ts, ts.onFileChanged)
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	ts.resourceSystem.Manager().Events().Unregister(core.EVENT_CODE_ASSET_FILE_CHANGED, ts, ts.onFileChanged)

	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	// Destroy all loaded textures.
	for name, ref := range ts.registeredTextureTable {
		ts.destroy(ref)
		delete(ts.registeredTextureTable, name)
	}
	if ts.defaultAsset != nil {
		ts.renderer.Release(ts.defaultAsset)
		ts.defaultAsset = nil
		ts.DefaultTexture = nil
	}
	return nil
}

/**
 * @brief Acquires the texture with the given name. If it has not been loaded
 * yet this loads and uploads it. If it cannot be loaded the default texture is
 * returned. If it is already loaded its reference count is incremented.
 * @param name The asset path of the texture.
 * @param autoRelease Whether the texture is destroyed once its reference count reaches zero.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*renderer.Texture, error) {
	if name == DefaultTextureName {
		core.LogWarn("func texture system Acquire called for default texture. Use the DefaultTexture field for texture 'default'")
		return ts.DefaultTexture, nil
	}

	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	if ref, ok := ts.registeredTextureTable[name]; ok {
		ref.referenceCount++
		return ref.texture, nil
	}
	if uint32(len(ts.registeredTextureTable)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("%w: texture system holds %d textures", core.ErrGPUResourceLimit, ts.Config.MaxTextureCount)
		core.LogError(err.Error())
		return nil, err
	}

	ref, err := ts.load(name)
	if err != nil {
		core.LogWarn("texture '%s' could not be loaded, using default texture: %v", name, err)
		return ts.DefaultTexture, nil
	}
	ref.referenceCount = 1
	ref.autoRelease = autoRelease
	ts.registeredTextureTable[name] = ref
	return ref.texture, nil
}

/**
 * @brief Releases one reference to the named texture. Auto-release textures
 * are destroyed and evicted once no references remain.
 */
func (ts *TextureSystem) Release(name string) {
	// Ignore release requests for the default texture.
	if name == DefaultTextureName {
		return
	}
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	ref, ok := ts.registeredTextureTable[name]
	if !ok {
		core.LogWarn("texture system Release called for unknown texture '%s'", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		ts.destroy(ref)
		delete(ts.registeredTextureTable, name)
		core.LogDebug("texture '%s' released", name)
	}
}

// Get returns the current GPU texture registered under name.
func (ts *TextureSystem) Get(name string) (*renderer.Texture, bool) {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	ref, ok := ts.registeredTextureTable[name]
	if !ok {
		return nil, false
	}
	return ref.texture, true
}

// ReferenceCount returns the number of outstanding Acquire calls for name.
func (ts *TextureSystem) ReferenceCount(name string) uint64 {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	if ref, ok := ts.registeredTextureTable[name]; ok {
		return ref.referenceCount
	}
	return 0
}

func (ts *TextureSystem) load(name string) (*textureReference, error) {
	b, err := ts.resourceSystem.Load(name, ts.Config.LoadParams)
	if err != nil {
		return nil, err
	}
	var asset assets.Asset
	for _, a := range b.Contents() {
		if a.Type() == assets.TypeTexture {
			asset = a
			break
		}
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: '%s' is a %s, not a texture", core.ErrInvalidAsset, name, b.Type())
	}
	objs, err := ts.renderer.GPUObjectsFromAssets([]assets.Asset{asset})
	if err != nil {
		return nil, err
	}
	return &textureReference{
		bundle:  b,
		asset:   asset,
		texture: objs[0].(*renderer.Texture),
	}, nil
}

// destroy releases the GPU texture and evicts the dummy bundle so the next
// Acquire reads the file again.
func (ts *TextureSystem) destroy(ref *textureReference) {
	ts.renderer.Release(ref.asset)
	ts.resourceSystem.Manager().RemoveAssetFromCache(ref.bundle)
}

func (ts *TextureSystem) onFileChanged(code core.EventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	for name, ref := range ts.registeredTextureTable {
		if ref.asset.CacheKey() != data.Key {
			continue
		}
		fresh, err := ts.load(name)
		if err != nil {
			core.LogWarn("texture '%s' changed but could not be reloaded: %v", name, err)
			continue
		}
		fresh.referenceCount = ref.referenceCount
		fresh.autoRelease = ref.autoRelease
		fresh.texture.Generation = ref.texture.Generation + 1
		ts.destroy(ref)
		ts.registeredTextureTable[name] = fresh
		core.LogInfo("texture '%s' reloaded (generation %d)", name, fresh.texture.Generation)
	}
	return false
}

// checkerboard builds a blue and white checkerboard of 8x8 cells scaled up to
// dim pixels.
func checkerboard(dim int) *image.RGBA {
	const cells = 8
	base := image.NewRGBA(image.Rect(0, 0, cells, cells))
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{B: 255, A: 255}
			}
			base.SetRGBA(x, y, c)
		}
	}
	return transform.Resize(base, dim, dim, transform.NearestNeighbor)
}
