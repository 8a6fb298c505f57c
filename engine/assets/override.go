package assets

import (
	"path"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

// LoaderOverride customizes every hierarchy level of a load. Hooks that need
// to call other hooks go through ctx.Override so that a type embedding
// DefaultOverride still sees its own replacements.
type LoaderOverride interface {
	// GetLoadFilename may rewrite the requested path before it is opened.
	GetLoadFilename(filename string, ctx *LoadContext, hierarchyLevel uint32) string
	// GetLoadFile may substitute the opened file. file is nil when opening failed.
	GetLoadFile(file *File, supposedFilename string, ctx *LoadContext, hierarchyLevel uint32) *File
	// FindCachedAsset probes the cache and falls back to HandleSearchFail.
	FindCachedAsset(key string, types []Type, ctx *LoadContext, hierarchyLevel uint32) Bundle
	// ChooseRelevantFromFound picks one of several cached candidates.
	ChooseRelevantFromFound(found []Bundle, ctx *LoadContext, hierarchyLevel uint32) Bundle
	// HandleSearchFail runs on a cache miss; a non-empty result short-circuits the load.
	HandleSearchFail(key string, ctx *LoadContext, hierarchyLevel uint32) Bundle
	// HandleLoadFail may synthesize a replacement and tells whether to cache it.
	HandleLoadFail(file *File, supposedFilename, cacheKey string, ctx *LoadContext, hierarchyLevel uint32) (Bundle, bool)
	// InsertAssetIntoCache renames the bundle to key and caches it unless the
	// level forbids insertion. It runs under the manager's insert lock and
	// must not load assets.
	InsertAssetIntoCache(bundle Bundle, key string, ctx *LoadContext, hierarchyLevel uint32)
}

// DefaultOverride implements LoaderOverride with the manager's stock
// behaviour. Embed it to replace single hooks.
type DefaultOverride struct {
	manager *Manager
}

func NewDefaultOverride(m *Manager) *DefaultOverride {
	return &DefaultOverride{manager: m}
}

func (o *DefaultOverride) GetLoadFilename(filename string, ctx *LoadContext, hierarchyLevel uint32) string {
	return filename
}

func (o *DefaultOverride) GetLoadFile(file *File, supposedFilename string, ctx *LoadContext, hierarchyLevel uint32) *File {
	return file
}

func (o *DefaultOverride) FindCachedAsset(key string, types []Type, ctx *LoadContext, hierarchyLevel uint32) Bundle {
	found := o.manager.FindAssets(key, types...)
	if len(found) == 0 {
		return ctx.Override.HandleSearchFail(key, ctx, hierarchyLevel)
	}
	return ctx.Override.ChooseRelevantFromFound(found, ctx, hierarchyLevel)
}

// ChooseRelevantFromFound returns the first candidate: lowest type index,
// then oldest insertion.
func (o *DefaultOverride) ChooseRelevantFromFound(found []Bundle, ctx *LoadContext, hierarchyLevel uint32) Bundle {
	if len(found) == 0 {
		return Bundle{}
	}
	return found[0]
}

func (o *DefaultOverride) HandleSearchFail(key string, ctx *LoadContext, hierarchyLevel uint32) Bundle {
	return Bundle{}
}

func (o *DefaultOverride) HandleLoadFail(file *File, supposedFilename, cacheKey string, ctx *LoadContext, hierarchyLevel uint32) (Bundle, bool) {
	return Bundle{}, false
}

func (o *DefaultOverride) InsertAssetIntoCache(bundle Bundle, key string, ctx *LoadContext, hierarchyLevel uint32) {
	o.manager.ChangeAssetKey(bundle, key)
	if !ctx.Params.CacheFlags.Level(hierarchyLevel).SkipsInsert() {
		o.manager.InsertAssetIntoCache(bundle)
	}
}

// SearchPathOverride redirects requests for files that do not exist to the
// first search directory containing them.
type SearchPathOverride struct {
	*DefaultOverride
	searchPaths []string
}

func NewSearchPathOverride(m *Manager, searchPaths ...string) *SearchPathOverride {
	return &SearchPathOverride{
		DefaultOverride: NewDefaultOverride(m),
		searchPaths:     searchPaths,
	}
}

func (o *SearchPathOverride) GetLoadFilename(filename string, ctx *LoadContext, hierarchyLevel uint32) string {
	if o.manager.Exists(filename) {
		return filename
	}
	base := path.Base(filename)
	for _, dir := range o.searchPaths {
		candidate := path.Join(dir, base)
		if o.manager.Exists(candidate) {
			core.LogDebug("resolved '%s' through search path '%s'", filename, dir)
			return candidate
		}
	}
	return filename
}
