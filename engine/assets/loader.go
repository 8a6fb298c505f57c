package assets

// LoadParams tunes a single GetAsset request and every nested load it
// triggers.
type LoadParams struct {
	// One CachePolicy per hierarchy level.
	CacheFlags CacheFlags
	// FlipY asks image based loaders to flip pixel rows on load.
	FlipY bool
	// MaxTextureDimension clamps decoded textures, 0 keeps the source size.
	MaxTextureDimension int
}

// DefaultLoadParams caches every level.
func DefaultLoadParams() LoadParams {
	return LoadParams{CacheFlags: CacheFlagsCacheEverything}
}

// LoadContext is the per-invocation state shared between the manager, the
// override and the loader.
type LoadContext struct {
	Params LoadParams
	// MainFile is the file being loaded at this level, nil when none could be
	// opened.
	MainFile *File
	Manager  *Manager
	// Override is the hook set in effect for this request.
	Override LoaderOverride
}

// LoadDependency requests a sub-asset referenced from the main file, resolved
// relative to it, at the given hierarchy level.
func (ctx *LoadContext) LoadDependency(ref string, level uint32) Bundle {
	return ctx.Manager.GetAssetInHierarchy(RelativeTo(ctx.MainFile, ref), ctx.Params, level, ctx.Override)
}

// Loader turns files into asset bundles.
type Loader interface {
	// Extensions lists the lowercase file extensions, without dot, the loader
	// is indexed under.
	Extensions() []string
	// SupportedTypes is the mask of asset types the loader can produce.
	SupportedTypes() Type
	// IsLoadable sniffs the file content before the loader commits to it.
	IsLoadable(f *File) bool
	// LoadAsset decodes f. Nested assets must be requested through
	// ctx.Manager at hierarchyLevel+1. An empty bundle or an error means
	// failure; the manager then moves on to the next candidate.
	LoadAsset(f *File, ctx *LoadContext, hierarchyLevel uint32) (Bundle, error)
}
