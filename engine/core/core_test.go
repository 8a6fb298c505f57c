package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Assets, cfg.Assets)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anima.toml")
	data := []byte(`
[log]
level = "debug"

[assets]
base_path = "content"
search_paths = ["textures", "models"]
max_hierarchy_depth = 8
watch = true

[jobs]
workers = 2
queue_size = 4
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "content", cfg.Assets.BasePath)
	assert.Equal(t, []string{"textures", "models"}, cfg.Assets.SearchPaths)
	assert.Equal(t, uint32(8), cfg.Assets.MaxHierarchyDepth)
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	// untouched sections keep their defaults
	assert.Equal(t, uint32(1024), cfg.Renderer.MaxTextures)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(malformed, []byte("[assets\nbase_path ="), 0o644))
	_, err := LoadConfig(malformed)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	zeroWorkers := filepath.Join(dir, "workers.toml")
	require.NoError(t, os.WriteFile(zeroWorkers, []byte("[jobs]\nworkers = 0\n"), 0o644))
	_, err = LoadConfig(zeroWorkers)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	var got []string

	first := func(code EventCode, sender, listener interface{}, ctx EventContext) bool {
		got = append(got, "first:"+ctx.Key)
		return false
	}
	second := func(code EventCode, sender, listener interface{}, ctx EventContext) bool {
		got = append(got, "second:"+ctx.Key)
		return true
	}

	assert.True(t, bus.Register(EVENT_CODE_ASSET_LOADED, "a", first))
	assert.False(t, bus.Register(EVENT_CODE_ASSET_LOADED, "a", first))
	assert.True(t, bus.Register(EVENT_CODE_ASSET_LOADED, "b", second))

	assert.True(t, bus.Fire(EVENT_CODE_ASSET_LOADED, nil, EventContext{Key: "x.png"}))
	assert.Equal(t, []string{"first:x.png", "second:x.png"}, got)

	assert.True(t, bus.Unregister(EVENT_CODE_ASSET_LOADED, "b", second))
	assert.False(t, bus.Fire(EVENT_CODE_ASSET_LOADED, nil, EventContext{Key: "y.png"}))
	assert.False(t, bus.Fire(EVENT_CODE_ASSET_EVICTED, nil, EventContext{}))
}

func TestMetricsRollingAverage(t *testing.T) {
	m := NewMetrics()
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.Loaded(2 * time.Millisecond)
	m.Loaded(4 * time.Millisecond)

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.CacheHits)
	assert.Equal(t, uint64(2), s.CacheMisses)
	assert.Equal(t, uint64(2), s.Loads)
	assert.InDelta(t, 3.0, s.LoadMSAvg, 0.001)
}

func TestIdentifier(t *testing.T) {
	a, b := NewIdentifier(), NewIdentifier()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, InvalidIdentifier, a)
	assert.Len(t, ShortIdentifier(a), 8)
}
