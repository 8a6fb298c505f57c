package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// sniffLen is the number of leading bytes filetype needs to tell formats apart.
const sniffLen = 262

// TextureLoader decodes raster images into RGBA textures.
type TextureLoader struct{}

func (tl *TextureLoader) Extensions() []string {
	return []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}
}

func (tl *TextureLoader) SupportedTypes() assets.Type {
	return assets.TypeTexture
}

func (tl *TextureLoader) IsLoadable(f *assets.File) bool {
	return filetype.IsImage(f.Header(sniffLen))
}

func (tl *TextureLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	img, format, err := image.Decode(f.Reader())
	if err != nil {
		return assets.Bundle{}, fmt.Errorf("%w: %s: %v", core.ErrUnsupportedFormat, f.Name(), err)
	}

	rgba := clone.AsRGBA(img)
	if limit := ctx.Params.MaxTextureDimension; limit > 0 {
		rgba = clampDimension(rgba, limit)
	}
	if ctx.Params.FlipY {
		rgba = transform.FlipV(rgba)
	}

	tex := assets.NewTexture(rgba, format)
	tex.FlippedY = ctx.Params.FlipY
	core.LogDebug("texture '%s' decoded: %dx%d %s", f.Name(), tex.Width, tex.Height, format)
	return assets.NewBundle(tex), nil
}

// clampDimension scales img down, keeping its aspect ratio, so that neither
// side exceeds limit.
func clampDimension(img *image.RGBA, limit int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= limit && h <= limit {
		return img
	}
	nw, nh := limit, limit
	if w >= h {
		nh = max(1, h*limit/w)
	} else {
		nw = max(1, w*limit/h)
	}
	return transform.Resize(img, nw, nh, transform.Linear)
}
