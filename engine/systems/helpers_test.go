package systems

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/renderer"
)

func init() {
	core.SetLogOutput(io.Discard)
}

const plainMaterial = `version=1
name=plain
shader=Builtin.MaterialShader
diffuse_colour=1.0 1.0 1.0 1.0
`

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, fsys hackpadfs.FS, name string, data []byte) {
	t.Helper()
	f, err := assets.CreateFile(fsys, name)
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

// newAssetFS lays out files under the "assets" base path of a memory filesystem.
func newAssetFS(t *testing.T, files map[string][]byte) hackpadfs.FS {
	t.Helper()
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	for name, data := range files {
		writeFile(t, fsys, "assets/"+name, data)
	}
	return fsys
}

func testAssetsConfig() core.AssetsConfig {
	return core.AssetsConfig{
		BasePath:          "assets",
		MaxHierarchyDepth: 16,
	}
}

func newResourceSystem(t *testing.T, fsys hackpadfs.FS, cfg core.AssetsConfig, js *JobSystem) *ResourceSystem {
	t.Helper()
	rs, err := NewResourceSystem(&ResourceSystemConfig{Assets: cfg, FileSystem: fsys}, js)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rs.Shutdown()) })
	return rs
}

func newTextureSystem(t *testing.T, fsys hackpadfs.FS, maxTextures uint32) (*TextureSystem, *ResourceSystem, *renderer.HeadlessBackend) {
	t.Helper()
	rs, err := NewResourceSystem(&ResourceSystemConfig{Assets: testAssetsConfig(), FileSystem: fsys}, nil)
	require.NoError(t, err)
	backend := renderer.NewHeadlessBackend(0)
	r := renderer.New(rs.Manager(), backend)
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: maxTextures,
		LoadParams:      DefaultTextureLoadParams(),
	}, rs, r)
	require.NoError(t, err)
	require.NoError(t, ts.Initialize())
	t.Cleanup(func() {
		require.NoError(t, ts.Shutdown())
		require.NoError(t, r.Shutdown())
		require.NoError(t, rs.Shutdown())
	})
	return ts, rs, backend
}
