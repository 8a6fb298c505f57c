package assets

import "github.com/spaghettifunk/anima-assets/engine/math"

// WriterFlags are format-independent hints for writers.
type WriterFlags uint32

const (
	WriterFlagNone   WriterFlags = 0
	WriterFlagBinary WriterFlags = 1 << 0 // prefer a binary encoding where a format has both
)

// WriteParams describes one WriteAsset request.
type WriteParams struct {
	RootAsset Asset
	// CompressionLevel is a hint in [0, 1]; writers map it onto their format.
	CompressionLevel float32
	Flags            WriterFlags
}

// WriteContext is handed to writers.
type WriteContext struct {
	Params   WriteParams
	File     *WriteFile
	Override WriterOverride
}

// CompressionLevel resolves the compression hint for asset through the
// override.
func (ctx *WriteContext) CompressionLevel(asset Asset) float32 {
	return ctx.Override.GetAssetCompressionLevel(ctx, asset, 0)
}

// Flags resolves the writing flags for asset through the override.
func (ctx *WriteContext) Flags(asset Asset) WriterFlags {
	return ctx.Override.GetAssetWritingFlags(ctx, asset, 0)
}

// Writer serializes assets.
type Writer interface {
	Extensions() []string
	SupportedTypes() Type
	// WriteAsset serializes ctx.Params.RootAsset into f.
	WriteAsset(f *WriteFile, ctx *WriteContext) error
}

// WriterOverride customizes per-asset writing decisions.
type WriterOverride interface {
	GetAssetCompressionLevel(ctx *WriteContext, asset Asset, hierarchyLevel uint32) float32
	GetAssetWritingFlags(ctx *WriteContext, asset Asset, hierarchyLevel uint32) WriterFlags
}

// DefaultWriterOverride passes the request parameters through, with the
// compression hint clamped to [0, 1].
type DefaultWriterOverride struct{}

func (DefaultWriterOverride) GetAssetCompressionLevel(ctx *WriteContext, asset Asset, hierarchyLevel uint32) float32 {
	return math.Clamp(ctx.Params.CompressionLevel, 0, 1)
}

func (DefaultWriterOverride) GetAssetWritingFlags(ctx *WriteContext, asset Asset, hierarchyLevel uint32) WriterFlags {
	return ctx.Params.Flags
}
