package systems

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

func pixelAt(pixels []uint8, width, x, y int) color.RGBA {
	i := (y*width + x) * 4
	return color.RGBA{R: pixels[i], G: pixels[i+1], B: pixels[i+2], A: pixels[i+3]}
}

func TestTextureSystemDefaultTexture(t *testing.T) {
	ts, rs, backend := newTextureSystem(t, newAssetFS(t, nil), 8)

	def := ts.DefaultTexture
	require.NotNil(t, def)
	assert.Equal(t, DefaultTextureName, def.Name)
	assert.Equal(t, uint32(DefaultTextureDimension), def.Width)
	assert.Equal(t, uint32(DefaultTextureDimension), def.Height)

	pixels := backend.TexturePixels(def)
	require.Len(t, pixels, DefaultTextureDimension*DefaultTextureDimension*4)
	blue := color.RGBA{B: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, blue, pixelAt(pixels, DefaultTextureDimension, 16, 16))
	assert.Equal(t, white, pixelAt(pixels, DefaultTextureDimension, 48, 16))
	assert.Equal(t, white, pixelAt(pixels, DefaultTextureDimension, 16, 48))
	assert.Equal(t, blue, pixelAt(pixels, DefaultTextureDimension, 48, 48))

	got, err := ts.Acquire(DefaultTextureName, false)
	require.NoError(t, err)
	assert.Same(t, def, got)
	ts.Release(DefaultTextureName)

	assert.Equal(t, 1, rs.Manager().GPUObjectCount(assets.TypeTexture))
}

func TestTextureSystemAcquireRelease(t *testing.T) {
	fsys := newAssetFS(t, map[string][]byte{
		"textures/brick.png": encodePNG(t, 4, 2, red),
	})
	ts, rs, backend := newTextureSystem(t, fsys, 8)

	first, err := ts.Acquire("textures/brick.png", true)
	require.NoError(t, err)
	assert.NotSame(t, ts.DefaultTexture, first)
	assert.Equal(t, uint32(4), first.Width)
	assert.Equal(t, uint32(2), first.Height)
	assert.Equal(t, uint64(1), ts.ReferenceCount("textures/brick.png"))

	second, err := ts.Acquire("textures/brick.png", true)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(2), ts.ReferenceCount("textures/brick.png"))

	// the cpu copy is released once the texture lives on the gpu
	cached := rs.Manager().FindAssets("textures/brick.png", assets.TypeTexture)
	require.Len(t, cached, 1)
	assert.Equal(t, assets.StateDummy, cached[0].First().State())

	ts.Release("textures/brick.png")
	got, ok := ts.Get("textures/brick.png")
	require.True(t, ok)
	assert.Same(t, first, got)

	ts.Release("textures/brick.png")
	_, ok = ts.Get("textures/brick.png")
	assert.False(t, ok)
	assert.Zero(t, rs.Manager().CachedCount(assets.TypeTexture))
	textures, _, _ := backend.Live()
	assert.Equal(t, 1, textures, "only the default texture is left")

	// a fresh acquire reads the file again
	third, err := ts.Acquire("textures/brick.png", true)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, uint64(2), rs.Manager().Metrics().Loads)
}

func TestTextureSystemWithoutAutoRelease(t *testing.T) {
	fsys := newAssetFS(t, map[string][]byte{
		"textures/brick.png": encodePNG(t, 2, 2, red),
	})
	ts, _, _ := newTextureSystem(t, fsys, 8)

	tex, err := ts.Acquire("textures/brick.png", false)
	require.NoError(t, err)
	ts.Release("textures/brick.png")

	got, ok := ts.Get("textures/brick.png")
	require.True(t, ok)
	assert.Same(t, tex, got)
	assert.Zero(t, ts.ReferenceCount("textures/brick.png"))

	ts.Release("textures/unknown.png")
}

func TestTextureSystemFallsBackToDefault(t *testing.T) {
	fsys := newAssetFS(t, map[string][]byte{
		"materials/plain.amt": []byte(plainMaterial),
		"textures/broken.png": []byte("not a png"),
	})
	ts, _, _ := newTextureSystem(t, fsys, 8)

	for _, name := range []string{"textures/missing.png", "materials/plain.amt", "textures/broken.png"} {
		tex, err := ts.Acquire(name, true)
		require.NoError(t, err, name)
		assert.Same(t, ts.DefaultTexture, tex, name)
		_, ok := ts.Get(name)
		assert.False(t, ok, name)
	}
}

func TestTextureSystemLimit(t *testing.T) {
	fsys := newAssetFS(t, map[string][]byte{
		"a.png": encodePNG(t, 2, 2, red),
		"b.png": encodePNG(t, 2, 2, red),
	})
	ts, _, _ := newTextureSystem(t, fsys, 1)

	_, err := ts.Acquire("a.png", true)
	require.NoError(t, err)
	_, err = ts.Acquire("b.png", true)
	assert.ErrorIs(t, err, core.ErrGPUResourceLimit)

	ts.Release("a.png")
	_, err = ts.Acquire("b.png", true)
	assert.NoError(t, err)
}

func TestTextureSystemReloadsChangedFile(t *testing.T) {
	fsys := newAssetFS(t, map[string][]byte{
		"textures/brick.png": encodePNG(t, 2, 2, red),
	})
	ts, rs, backend := newTextureSystem(t, fsys, 8)

	old, err := ts.Acquire("textures/brick.png", true)
	require.NoError(t, err)
	old.Generation = 3

	writeFile(t, fsys, "assets/textures/brick.png", encodePNG(t, 8, 8, red))
	assert.Equal(t, 1, rs.Manager().EvictKey("textures/brick.png"))
	rs.Manager().Events().Fire(core.EVENT_CODE_ASSET_FILE_CHANGED, nil, core.EventContext{Key: "textures/brick.png"})

	fresh, ok := ts.Get("textures/brick.png")
	require.True(t, ok)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, uint32(8), fresh.Width)
	assert.Equal(t, uint32(4), fresh.Generation)
	assert.Equal(t, uint64(1), ts.ReferenceCount("textures/brick.png"))
	assert.Nil(t, backend.TexturePixels(old))

	textures, _, _ := backend.Live()
	assert.Equal(t, 2, textures)

	// unrelated keys are ignored
	rs.Manager().Events().Fire(core.EVENT_CODE_ASSET_FILE_CHANGED, nil, core.EventContext{Key: "textures/other.png"})
	got, _ := ts.Get("textures/brick.png")
	assert.Same(t, fresh, got)
}

func TestNewTextureSystemValidation(t *testing.T) {
	_, err := NewTextureSystem(&TextureSystemConfig{}, nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestTextureSystemShutdownReleasesEverything(t *testing.T) {
	fsys := newAssetFS(t, map[string][]byte{
		"textures/brick.png": encodePNG(t, 2, 2, red),
	})
	ts, rs, backend := newTextureSystem(t, fsys, 8)
	_, err := ts.Acquire("textures/brick.png", false)
	require.NoError(t, err)

	require.NoError(t, ts.Shutdown())
	textures, _, _ := backend.Live()
	assert.Zero(t, textures)
	assert.Zero(t, rs.Manager().GPUObjectCount(assets.TypeAll))
	assert.Nil(t, ts.DefaultTexture)
}
