package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/renderer"
)

func init() {
	core.SetLogOutput(io.Discard)
}

const cubeOBJ = `o cube
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
f 1 2 3 4
`

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFS(t *testing.T, files map[string][]byte) hackpadfs.FS {
	t.Helper()
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	for name, data := range files {
		f, err := assets.CreateFile(fsys, "assets/"+name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	return fsys
}

func testConfig() *core.Config {
	cfg := core.DefaultConfig()
	cfg.Log.Level = "error"
	cfg.Jobs.Workers = 2
	return cfg
}

func TestEngineRun(t *testing.T) {
	fsys := newFS(t, map[string][]byte{
		"textures/grass.png": encodePNG(t, 4, 4),
		"models/quad.obj":    []byte(cubeOBJ),
	})
	var out bytes.Buffer
	e, err := New(&ApplicationConfig{
		Name:        "test",
		Config:      testConfig(),
		Assets:      []string{"textures/grass.png", "models/quad.obj", "missing.png"},
		WriteTarget: "out/grass.bmp",
		Output:      &out,
	}, fsys)
	require.NoError(t, err)

	require.NoError(t, e.Run())

	m := e.Systems().ResourceSystem().Manager()
	assert.True(t, assets.FileExists(fsys, "assets/out/grass.bmp"))
	// default texture, grass and the quad
	assert.Equal(t, 2, m.GPUObjectCount(assets.TypeTexture))
	assert.Equal(t, 1, m.GPUObjectCount(assets.TypeMesh))

	dump := out.String()
	assert.Contains(t, dump, "textures/grass.png")
	assert.Contains(t, dump, "models/quad.obj")
	assert.Contains(t, dump, "dummy")

	assert.Error(t, e.Run(), "an engine runs once")
	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
}

func TestEngineWatchBlocksUntilShutdown(t *testing.T) {
	const key = "textures/grass.png"
	fsys := newFS(t, map[string][]byte{
		key: encodePNG(t, 2, 2),
	})
	cfg := testConfig()
	cfg.Assets.Watch = true
	// the default texture, grass and room for one reload
	cfg.Renderer.MaxTextures = 3
	e, err := New(&ApplicationConfig{
		Name:   "test",
		Config: cfg,
		Assets: []string{key},
	}, fsys)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	m := e.Systems().ResourceSystem().Manager()
	backend := e.Systems().Renderer().Backend().(*renderer.HeadlessBackend)
	require.Eventually(t, func() bool {
		return m.GPUObjectCount(assets.TypeTexture) == 2
	}, 5*time.Second, 10*time.Millisecond)

	reloaded := func(width int) bool {
		found := m.FindAssets(key, assets.TypeTexture)
		if len(found) != 1 {
			return false
		}
		tex, ok := found[0].First().(*assets.Texture)
		return ok && tex.Width == width && tex.State() == assets.StateDummy
	}
	changed := func() {
		m.EvictKey(key)
		e.Systems().Events().Fire(core.EVENT_CODE_ASSET_FILE_CHANGED, nil, core.EventContext{Key: key})
	}

	// a changed file of a loaded asset is loaded and realized again
	f, err := assets.CreateFile(fsys, "assets/"+key)
	require.NoError(t, err)
	_, err = f.Write(encodePNG(t, 8, 8))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Eventually(t, func() bool {
		changed()
		return reloaded(8)
	}, 5*time.Second, 10*time.Millisecond)

	// the replaced gpu texture is destroyed, so repeated reloads stay in budget
	for i := 0; i < 4; i++ {
		changed()
		require.True(t, reloaded(8))
		assert.Equal(t, 2, m.GPUObjectCount(assets.TypeTexture))
		textures, _, _ := backend.Live()
		assert.Equal(t, 2, textures)
	}

	select {
	case <-done:
		t.Fatal("Run returned before Shutdown")
	default:
	}

	require.NoError(t, e.Shutdown())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Level = "loud"
	_, err := New(&ApplicationConfig{Config: cfg}, newFS(t, nil))
	assert.Error(t, err)
}
