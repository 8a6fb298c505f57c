package assets

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

func TestGPUObjectCache(t *testing.T) {
	m := newTestManager(t, map[string]string{"model.mesh": "MESH"})
	m.AddAssetLoader(meshLoader())

	b := m.GetAsset("model.mesh", DefaultLoadParams(), nil)
	require.False(t, b.IsEmpty())
	asset := b.First()
	stub := asset.(*stubAsset)
	require.NotNil(t, stub.payload)

	g1 := newStubGPUObject()
	require.NoError(t, m.ConvertAssetToEmptyCacheHandle(asset, g1))
	assert.Equal(t, StateDummy, asset.State())
	assert.Nil(t, stub.payload)
	assert.Equal(t, int32(2), asset.RefCount())
	assert.Equal(t, "model.mesh", asset.CacheKey(), "dummies keep their key")

	found, ok := m.FindGPUObject(asset)
	require.True(t, ok)
	assert.Same(t, g1, found)

	g2 := newStubGPUObject()
	require.NoError(t, m.ConvertAssetToEmptyCacheHandle(asset, g2))
	assert.Equal(t, 2, m.GPUObjectCount(TypeMesh))
	found, _ = m.FindGPUObject(asset)
	assert.Same(t, g1, found, "the oldest association wins")

	err := m.ConvertAssetToEmptyCacheHandle(asset, g1)
	assert.ErrorIs(t, err, core.ErrInvalidGPUObject)
	assert.Equal(t, int32(3), asset.RefCount())

	assert.True(t, m.RemoveCachedGPUObject(asset, g1))
	assert.False(t, m.RemoveCachedGPUObject(asset, g1))
	assert.Equal(t, int32(2), asset.RefCount())
	found, _ = m.FindGPUObject(asset)
	assert.Same(t, g2, found)

	assert.True(t, m.RemoveCachedGPUObject(asset, g2))
	_, ok = m.FindGPUObject(asset)
	assert.False(t, ok)
	assert.Equal(t, int32(1), asset.RefCount())
	assert.Equal(t, StateDummy, asset.State())
}

func TestGPUObjectCacheRejectsInvalidInput(t *testing.T) {
	m := newTestManager(t, nil)
	asset := &stubAsset{typ: TypeTexture}

	assert.ErrorIs(t, m.ConvertAssetToEmptyCacheHandle(nil, newStubGPUObject()), core.ErrInvalidAsset)
	assert.ErrorIs(t, m.ConvertAssetToEmptyCacheHandle(asset, nil), core.ErrInvalidGPUObject)
	assert.Equal(t, StateLive, asset.State())
	assert.Equal(t, int32(0), asset.RefCount())

	untyped := &stubAsset{typ: TypeTexture | TypeImage}
	assert.ErrorIs(t, m.ConvertAssetToEmptyCacheHandle(untyped, newStubGPUObject()), core.ErrInvalidAsset)

	_, ok := m.FindGPUObject(nil)
	assert.False(t, ok)
	assert.False(t, m.RemoveCachedGPUObject(asset, newStubGPUObject()))
}

func TestCloseReleasesGPUKeys(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	asset := &stubAsset{typ: TypeShader}
	b := NewBundle(asset)
	m.ChangeAssetKey(b, "shader.spv")
	require.True(t, m.InsertAssetIntoCache(b))
	require.NoError(t, m.ConvertAssetToEmptyCacheHandle(asset, newStubGPUObject()))
	assert.Equal(t, int32(2), asset.RefCount())

	m.Close()
	assert.Equal(t, int32(0), asset.RefCount())
	assert.False(t, asset.IsCached())
	assert.Equal(t, 0, m.GPUObjectCount(TypeAll))
}

func TestReadPayloadAgainstRelease(t *testing.T) {
	asset := &stubAsset{typ: TypeBlob, payload: []byte("payload")}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				asset.ReadPayload(func() {
					assert.Equal(t, "payload", string(asset.payload))
				})
			}
		}()
	}
	asset.ConvertToDummy()
	wg.Wait()

	called := false
	assert.False(t, asset.ReadPayload(func() { called = true }))
	assert.False(t, called)
	assert.Nil(t, asset.payload)
}
