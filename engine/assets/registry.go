package assets

import (
	"github.com/spaghettifunk/anima-assets/engine/core"
)

type writerKey struct {
	typ Type
	ext string
}

func sameLoader(a, b Loader) bool { return a == b }
func sameWriter(a, b Writer) bool { return a == b }

// AddAssetLoader registers l after every loader already present and indexes
// it under each of its extensions. It returns the loader's position in the
// fallback probe order.
func (m *Manager) AddAssetLoader(l Loader) int {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	m.loaders = append(m.loaders, l)
	for _, ext := range l.Extensions() {
		m.loadersByExt.Insert(normalizeExtension(ext), l)
	}
	core.LogDebug("loader %T registered for %v (%s)", l, l.Extensions(), l.SupportedTypes())
	return len(m.loaders) - 1
}

// RemoveAssetLoader unregisters l from the probe order and the extension index.
func (m *Manager) RemoveAssetLoader(l Loader) bool {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	ix := -1
	for i, existing := range m.loaders {
		if existing == l {
			ix = i
			break
		}
	}
	if ix < 0 {
		return false
	}
	m.loaders = append(m.loaders[:ix:ix], m.loaders[ix+1:]...)
	for _, ext := range l.Extensions() {
		m.loadersByExt.RemoveObject(l, normalizeExtension(ext))
	}
	return true
}

func (m *Manager) LoaderCount() int {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()
	return len(m.loaders)
}

// AddAssetWriter indexes w under every (type, extension) pair of its
// supported type mask crossed with its extensions. It returns the number of
// pairs added.
func (m *Manager) AddAssetWriter(w Writer) int {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	added := 0
	w.SupportedTypes().Each(func(t Type) {
		m.writersByType.Insert(t, w)
		for _, ext := range w.Extensions() {
			if m.writersByTypeExt.Insert(writerKey{typ: t, ext: normalizeExtension(ext)}, w) {
				added++
			}
		}
	})
	core.LogDebug("writer %T registered for %v (%s)", w, w.Extensions(), w.SupportedTypes())
	return added
}

func (m *Manager) RemoveAssetWriter(w Writer) bool {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	removed := false
	w.SupportedTypes().Each(func(t Type) {
		if m.writersByType.RemoveObject(w, t) {
			removed = true
		}
		for _, ext := range w.Extensions() {
			m.writersByTypeExt.RemoveObject(w, writerKey{typ: t, ext: normalizeExtension(ext)})
		}
	})
	return removed
}

// WriterCount is the number of (type, writer) associations, one per type in
// each writer's supported mask.
func (m *Manager) WriterCount() int {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()
	return m.writersByType.Size()
}

// FindWriters returns the writers supporting t, whatever their extensions,
// in registration order.
func (m *Manager) FindWriters(t Type) []Writer {
	if t.Index() < 0 {
		return nil
	}
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()
	return m.writersByType.Find(t)
}

// loaderCandidates snapshots the loaders indexed under ext and the full
// probe order. The registry lock is not held while loaders run, since they
// re-enter the manager for nested assets.
func (m *Manager) loaderCandidates(ext string) ([]Loader, []Loader) {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()
	return m.loadersByExt.Find(ext), append([]Loader(nil), m.loaders...)
}

func (m *Manager) writerCandidates(t Type, ext string) []Writer {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()
	return m.writersByTypeExt.Find(writerKey{typ: t, ext: ext})
}

func normalizeExtension(ext string) string {
	return Extension("." + ext)
}
