package assets

import (
	"image"
)

// Texture is decoded pixel data, always 8-bit RGBA.
type Texture struct {
	Base

	Width        int
	Height       int
	ChannelCount uint8
	// Pixels holds Width*Height*ChannelCount bytes, rows top to bottom unless
	// FlippedY is set.
	Pixels []uint8
	// Format is the source encoding, e.g. "png".
	Format   string
	FlippedY bool
	// HasTransparency is set when any pixel has alpha below 255.
	HasTransparency bool
}

// NewTexture takes ownership of img's pixel buffer.
func NewTexture(img *image.RGBA, format string) *Texture {
	b := img.Bounds()
	pix := img.Pix
	if b.Min != (image.Point{}) || img.Stride != 4*b.Dx() {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(packed.Pix[y*packed.Stride:(y+1)*packed.Stride], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		pix = packed.Pix
	}
	t := &Texture{
		Width:        b.Dx(),
		Height:       b.Dy(),
		ChannelCount: 4,
		Pixels:       pix,
		Format:       format,
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] < 255 {
			t.HasTransparency = true
			break
		}
	}
	return t
}

func (t *Texture) Type() Type {
	return TypeTexture
}

// Image returns an RGBA view over the pixels, nil once the texture is a dummy.
func (t *Texture) Image() *image.RGBA {
	if t.Pixels == nil {
		return nil
	}
	return &image.RGBA{
		Pix:    t.Pixels,
		Stride: t.Width * int(t.ChannelCount),
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

func (t *Texture) ConvertToDummy() {
	t.releasePayload(func() {
		t.Pixels = nil
	})
}
