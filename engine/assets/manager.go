package assets

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

const DefaultMaxHierarchyDepth uint32 = 64

// Manager resolves paths or opened files to cached or freshly loaded
// bundles, dispatching to registered loaders, and keeps the CPU to GPU
// object cache.
//
// Cache lookups may run concurrently from any goroutine. Registry mutation
// is serialized with lookups through an exclusive lock but is expected to
// happen at startup.
type Manager struct {
	fsys     hackpadfs.FS
	root     string
	maxDepth uint32
	events   *core.EventBus
	metrics  *core.Metrics

	defaultOverride       *DefaultOverride
	defaultWriterOverride WriterOverride

	assetCache [TypeCount]*MultiCache[string, Bundle]
	gpuCache   [TypeCount]*MultiCache[Asset, GPUObject]

	// held from the second cache lookup until a freshly loaded bundle is
	// inserted
	insertMu sync.Mutex

	registryMu       sync.RWMutex
	loaders          []Loader
	loadersByExt     *MultiCache[string, Loader]
	writersByType    *MultiCache[Type, Writer]
	writersByTypeExt *MultiCache[writerKey, Writer]
}

type Option func(*Manager)

// WithFileSystem sets the filesystem assets are read from and written to.
// Defaults to an empty in-memory filesystem.
func WithFileSystem(fsys hackpadfs.FS) Option {
	return func(m *Manager) {
		m.fsys = fsys
	}
}

// WithRoot prefixes every path handed to the filesystem. Cache keys stay
// relative to the root.
func WithRoot(root string) Option {
	return func(m *Manager) {
		m.root = strings.TrimPrefix(path.Clean(strings.ReplaceAll(root, "\\", "/")), "/")
		if m.root == "." {
			m.root = ""
		}
	}
}

func WithMaxHierarchyDepth(depth uint32) Option {
	return func(m *Manager) {
		m.maxDepth = depth
	}
}

func WithEventBus(bus *core.EventBus) Option {
	return func(m *Manager) {
		m.events = bus
	}
}

func WithMetrics(metrics *core.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		maxDepth:              DefaultMaxHierarchyDepth,
		defaultWriterOverride: DefaultWriterOverride{},
		loadersByExt:          NewMultiCache[string, Loader](sameLoader),
		writersByType:         NewMultiCache[Type, Writer](sameWriter),
		writersByTypeExt:      NewMultiCache[writerKey, Writer](sameWriter),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fsys == nil {
		fsys, err := mem.NewFS()
		if err != nil {
			return nil, err
		}
		m.fsys = fsys
	}
	if m.maxDepth == 0 {
		return nil, fmt.Errorf("%w: max hierarchy depth must be greater than 0", core.ErrInvalidConfig)
	}
	if m.metrics == nil {
		m.metrics = core.NewMetrics()
	}
	if m.events == nil {
		m.events = core.NewEventBus()
	}
	m.defaultOverride = NewDefaultOverride(m)

	for ix := range m.assetCache {
		m.assetCache[ix] = NewMultiCache[string, Bundle](
			func(a, b Bundle) bool { return a.Same(b) },
			WithGreeting[string](func(b Bundle) {
				b.grab()
				b.setCached(true)
			}),
			WithDisposal[string](func(b Bundle) {
				b.setCached(false)
				b.drop()
			}),
		)
		m.gpuCache[ix] = NewMultiCache[Asset, GPUObject](func(a, b GPUObject) bool { return a == b })
	}
	return m, nil
}

func (m *Manager) FileSystem() hackpadfs.FS {
	return m.fsys
}

func (m *Manager) Events() *core.EventBus {
	return m.events
}

func (m *Manager) Metrics() core.MetricsSnapshot {
	return m.metrics.Snapshot()
}

func (m *Manager) DefaultOverride() *DefaultOverride {
	return m.defaultOverride
}

func (m *Manager) fsPath(name string) string {
	name = strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "/")
	if m.root == "" {
		return name
	}
	return path.Join(m.root, name)
}

// OpenFile reads name, relative to the manager root, into memory. Errors wrap
// core.ErrNotFound or core.ErrIO.
func (m *Manager) OpenFile(name string) (*File, error) {
	f, err := ReadFile(m.fsys, m.fsPath(name))
	if err != nil {
		return nil, classifyOpenError(err)
	}
	f.name = name
	return f, nil
}

// Exists reports whether name, relative to the manager root, is a file.
func (m *Manager) Exists(name string) bool {
	return FileExists(m.fsys, m.fsPath(name))
}

// GetAsset loads or fetches from cache the asset at filename. ovr may be nil
// to use the default override. An empty bundle signals failure.
func (m *Manager) GetAsset(filename string, params LoadParams, ovr LoaderOverride) Bundle {
	return m.GetAssetInHierarchy(filename, params, 0, ovr)
}

// GetAssetFromFile is GetAsset for a file the caller already opened.
func (m *Manager) GetAssetFromFile(file *File, supposedFilename string, params LoadParams, ovr LoaderOverride) Bundle {
	return m.GetAssetInHierarchyFromFile(file, supposedFilename, params, 0, ovr)
}

// GetAssetInHierarchy is the entry point loaders use for nested assets, with
// hierarchyLevel one above their own.
func (m *Manager) GetAssetInHierarchy(filename string, params LoadParams, hierarchyLevel uint32, ovr LoaderOverride) Bundle {
	if ovr == nil {
		ovr = m.defaultOverride
	}
	ctx := &LoadContext{Params: params, Manager: m, Override: ovr}

	resolved := ovr.GetLoadFilename(filename, ctx, hierarchyLevel)
	file, err := m.OpenFile(resolved)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.LogDebug("asset '%s': %v", resolved, err)
		} else {
			core.LogWarn("asset '%s': %v", resolved, err)
		}
		file = nil
	}
	return m.getAssetInHierarchy(file, filename, ctx, hierarchyLevel)
}

func (m *Manager) GetAssetInHierarchyFromFile(file *File, supposedFilename string, params LoadParams, hierarchyLevel uint32, ovr LoaderOverride) Bundle {
	if ovr == nil {
		ovr = m.defaultOverride
	}
	ctx := &LoadContext{Params: params, Manager: m, Override: ovr}
	return m.getAssetInHierarchy(file, supposedFilename, ctx, hierarchyLevel)
}

func (m *Manager) getAssetInHierarchy(file *File, supposedFilename string, ctx *LoadContext, level uint32) Bundle {
	if level >= m.maxDepth {
		core.LogError("asset '%s' at level %d: %v", supposedFilename, level, core.ErrHierarchyTooDeep)
		return Bundle{}
	}
	ovr := ctx.Override

	filename := supposedFilename
	if file != nil {
		filename = file.Name()
	}
	ctx.MainFile = file
	file = ovr.GetLoadFile(file, filename, ctx, level)
	if file != nil {
		filename = file.Name()
	} else {
		filename = supposedFilename
	}
	ctx.MainFile = file

	policy := ctx.Params.CacheFlags.Level(level)
	if !policy.SkipsLookup() {
		if found := m.FindAssets(filename); len(found) > 0 {
			m.metrics.CacheHit()
			return ovr.ChooseRelevantFromFound(found, ctx, level)
		}
		m.metrics.CacheMiss()
		if b := ovr.HandleSearchFail(filename, ctx, level); !b.IsEmpty() {
			return b
		}
	}

	var bundle Bundle
	if file != nil {
		clock := core.NewClock()
		clock.Start()
		bundle = m.probeLoaders(file, ctx, level)
		clock.Stop()
		if !bundle.IsEmpty() {
			m.metrics.Loaded(clock.Elapsed())
			now := time.Now()
			for _, a := range bundle.contents {
				a.base().stamp(file.Name(), now)
			}
			m.events.Fire(core.EVENT_CODE_ASSET_LOADED, m, core.EventContext{
				Key:  filename,
				Type: uint64(bundle.Type()),
				Data: bundle,
			})
		}
	}

	if !bundle.IsEmpty() {
		if !policy.SkipsInsert() {
			return m.commit(bundle, filename, ctx, level, !policy.SkipsLookup())
		}
		if bundle.CacheKey() == "" {
			bundle.setCacheKey(filename)
		}
		return bundle
	}

	m.metrics.LoadFailed()
	recovered, addToCache := ovr.HandleLoadFail(file, supposedFilename, filename, ctx, level)
	if !recovered.IsEmpty() && addToCache {
		return m.commit(recovered, filename, ctx, level, !policy.SkipsLookup())
	}
	return recovered
}

// commit inserts a bundle loaded after a cache miss. When recheck is set the
// cache is searched again under insertMu, and a bundle another goroutine
// inserted for the same key in the meantime wins over bundle.
func (m *Manager) commit(bundle Bundle, key string, ctx *LoadContext, level uint32, recheck bool) Bundle {
	m.insertMu.Lock()
	defer m.insertMu.Unlock()

	if recheck {
		if found := m.FindAssets(key); len(found) > 0 {
			core.LogDebug("asset '%s' was cached by a concurrent load, discarding this one", key)
			return ctx.Override.ChooseRelevantFromFound(found, ctx, level)
		}
	}
	ctx.Override.InsertAssetIntoCache(bundle, key, ctx, level)
	return bundle
}

// probeLoaders tries the loaders indexed under the file extension, then every
// remaining loader in registration order.
func (m *Manager) probeLoaders(file *File, ctx *LoadContext, level uint32) Bundle {
	byExt, all := m.loaderCandidates(Extension(file.Name()))

	tried := make(map[Loader]struct{}, len(byExt))
	for _, l := range byExt {
		tried[l] = struct{}{}
		if b := m.tryLoader(l, file, ctx, level); !b.IsEmpty() {
			return b
		}
	}
	for _, l := range all {
		if _, ok := tried[l]; ok {
			continue
		}
		if b := m.tryLoader(l, file, ctx, level); !b.IsEmpty() {
			return b
		}
	}
	core.LogDebug("asset '%s': %v", file.Name(), core.ErrUnsupportedFormat)
	return Bundle{}
}

func (m *Manager) tryLoader(l Loader, file *File, ctx *LoadContext, level uint32) Bundle {
	if !l.IsLoadable(file) {
		return Bundle{}
	}
	b, err := l.LoadAsset(file, ctx, level)
	if err != nil {
		core.LogWarn("loader %T failed on '%s': %v", l, file.Name(), err)
		return Bundle{}
	}
	return b
}

// FindAssets returns every cached bundle stored under key in the buckets of
// types, or of all types when none are given. Results are ordered by type
// index, then insertion.
func (m *Manager) FindAssets(key string, types ...Type) []Bundle {
	var out []Bundle
	if len(types) == 0 {
		for _, c := range m.assetCache {
			out = append(out, c.Find(key)...)
		}
		return out
	}
	var mask Type
	for _, t := range types {
		mask |= t
	}
	mask.Each(func(t Type) {
		out = append(out, m.assetCache[t.Index()].Find(key)...)
	})
	return out
}

// ChangeAssetKey renames every asset of bundle to newKey and, when cached,
// moves the bundle to the new key.
func (m *Manager) ChangeAssetKey(bundle Bundle, newKey string) {
	if bundle.IsEmpty() {
		return
	}
	oldKey := bundle.CacheKey()
	if bundle.First().IsCached() {
		if ix := bundle.Type().Index(); ix >= 0 {
			m.assetCache[ix].ChangeObjectKey(bundle, oldKey, newKey)
		}
	}
	bundle.setCacheKey(newKey)
}

// InsertAssetIntoCache caches bundle under its current key. It returns false
// for empty or untyped bundles and for a bundle already cached under that key.
func (m *Manager) InsertAssetIntoCache(bundle Bundle) bool {
	ix := bundle.Type().Index()
	if bundle.IsEmpty() || ix < 0 {
		return false
	}
	return m.assetCache[ix].Insert(bundle.CacheKey(), bundle)
}

func (m *Manager) RemoveAssetFromCache(bundle Bundle) bool {
	ix := bundle.Type().Index()
	if bundle.IsEmpty() || ix < 0 {
		return false
	}
	key := bundle.CacheKey()
	if !m.assetCache[ix].RemoveObject(bundle, key) {
		return false
	}
	m.metrics.Evicted(1)
	m.events.Fire(core.EVENT_CODE_ASSET_EVICTED, m, core.EventContext{
		Key:  key,
		Type: uint64(bundle.Type()),
	})
	return true
}

// EvictKey removes every bundle cached under key and returns how many were
// removed.
func (m *Manager) EvictKey(key string) int {
	removed := 0
	for _, b := range m.FindAssets(key) {
		if m.RemoveAssetFromCache(b) {
			removed++
		}
	}
	return removed
}

// ClearAllAssetCache empties the buckets of every type in mask.
func (m *Manager) ClearAllAssetCache(mask Type) {
	mask.Each(func(t Type) {
		c := m.assetCache[t.Index()]
		n := c.Size()
		c.Clear()
		m.metrics.Evicted(n)
	})
}

// CachedCount is the number of bundles cached for the types in mask.
func (m *Manager) CachedCount(mask Type) int {
	n := 0
	mask.Each(func(t Type) {
		n += m.assetCache[t.Index()].Size()
	})
	return n
}

// WriteAsset creates filename, relative to the manager root, and serializes
// params.RootAsset into it. A nil error means success. On failure the
// created file is removed.
func (m *Manager) WriteAsset(filename string, params WriteParams, ovr WriterOverride) error {
	if params.RootAsset == nil {
		m.metrics.WriteFailed()
		return fmt.Errorf("%w: nil root asset", core.ErrInvalidAsset)
	}
	if len(m.writerCandidates(params.RootAsset.Type(), Extension(filename))) == 0 {
		m.metrics.WriteFailed()
		if len(m.FindWriters(params.RootAsset.Type())) == 0 {
			return fmt.Errorf("%w: nothing writes %s assets", core.ErrNoWriter, params.RootAsset.Type())
		}
		return fmt.Errorf("%w: %s for '%s'", core.ErrNoWriter, params.RootAsset.Type(), filename)
	}

	target := m.fsPath(filename)
	f, err := CreateFile(m.fsys, target)
	if err != nil {
		m.metrics.WriteFailed()
		return fmt.Errorf("%w: %s: %v", core.ErrIO, filename, err)
	}
	f.name = filename

	err = m.WriteAssetToFile(f, params, ovr)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %s: %v", core.ErrIO, filename, cerr)
	}
	if err != nil {
		if rerr := hackpadfs.Remove(m.fsys, target); rerr != nil {
			core.LogDebug("could not remove '%s' after failed write: %v", filename, rerr)
		}
	}
	return err
}

// WriteAssetToFile tries every writer registered for the root asset type and
// the file extension, in registration order, until one succeeds. Each
// attempt is buffered so a failing writer leaves nothing behind.
func (m *Manager) WriteAssetToFile(f *WriteFile, params WriteParams, ovr WriterOverride) error {
	if params.RootAsset == nil {
		m.metrics.WriteFailed()
		return fmt.Errorf("%w: nil root asset", core.ErrInvalidAsset)
	}
	if ovr == nil {
		ovr = m.defaultWriterOverride
	}

	candidates := m.writerCandidates(params.RootAsset.Type(), Extension(f.Name()))
	if len(candidates) == 0 {
		m.metrics.WriteFailed()
		return fmt.Errorf("%w: %s for '%s'", core.ErrNoWriter, params.RootAsset.Type(), f.Name())
	}

	var errs []error
	for _, w := range candidates {
		var buf bytes.Buffer
		attempt := NewWriteFile(f.Name(), &buf)
		ctx := &WriteContext{Params: params, File: attempt, Override: ovr}
		var err error
		if !params.RootAsset.ReadPayload(func() { err = w.WriteAsset(attempt, ctx) }) {
			err = fmt.Errorf("%w: '%s' has released its payload", core.ErrInvalidAsset, params.RootAsset.CacheKey())
		}
		if err != nil {
			core.LogDebug("writer %T failed on '%s': %v", w, f.Name(), err)
			errs = append(errs, err)
			continue
		}
		if _, err := f.Write(buf.Bytes()); err != nil {
			m.metrics.WriteFailed()
			return fmt.Errorf("%w: %s: %v", core.ErrIO, f.Name(), err)
		}
		m.metrics.Written()
		return nil
	}
	m.metrics.WriteFailed()
	return fmt.Errorf("%w: '%s': %w", core.ErrWriteFailed, f.Name(), errors.Join(errs...))
}

// Close empties the asset cache and releases the CPU assets held as keys by
// the GPU object cache. Call it before dropping the manager.
func (m *Manager) Close() {
	m.ClearAllAssetCache(TypeAll)
	for _, c := range m.gpuCache {
		var keys []Asset
		c.Range(func(a Asset, _ GPUObject) bool {
			keys = append(keys, a)
			return true
		})
		c.Clear()
		for _, a := range keys {
			a.Drop()
		}
	}
}
