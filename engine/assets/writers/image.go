package writers

import (
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// PNGWriter encodes textures as PNG. The compression hint maps onto the
// encoder levels; 0 keeps the encoder default.
type PNGWriter struct{}

func (pw *PNGWriter) Extensions() []string {
	return []string{"png"}
}

func (pw *PNGWriter) SupportedTypes() assets.Type {
	return assets.TypeTexture
}

func (pw *PNGWriter) WriteAsset(f *assets.WriteFile, ctx *assets.WriteContext) error {
	img, err := textureImage(ctx.Params.RootAsset)
	if err != nil {
		return err
	}
	enc := &png.Encoder{CompressionLevel: pngCompression(ctx.CompressionLevel(ctx.Params.RootAsset))}
	return enc.Encode(f, img)
}

func pngCompression(hint float32) png.CompressionLevel {
	switch {
	case hint <= 0:
		return png.DefaultCompression
	case hint < 0.34:
		return png.BestSpeed
	case hint < 0.67:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// BMPWriter encodes textures as uncompressed BMP.
type BMPWriter struct{}

func (bw *BMPWriter) Extensions() []string {
	return []string{"bmp"}
}

func (bw *BMPWriter) SupportedTypes() assets.Type {
	return assets.TypeTexture
}

func (bw *BMPWriter) WriteAsset(f *assets.WriteFile, ctx *assets.WriteContext) error {
	img, err := textureImage(ctx.Params.RootAsset)
	if err != nil {
		return err
	}
	return bmp.Encode(f, img)
}

// textureImage returns the texture pixels top row first.
func textureImage(a assets.Asset) (image.Image, error) {
	tex, ok := a.(*assets.Texture)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a texture", core.ErrInvalidAsset, a)
	}
	img := tex.Image()
	if img == nil {
		return nil, fmt.Errorf("%w: texture '%s' has no pixels (%s)", core.ErrInvalidAsset, tex.CacheKey(), tex.State())
	}
	if tex.FlippedY {
		return transform.FlipV(img), nil
	}
	return img, nil
}
