package assets

import "golang.org/x/image/font/sfnt"

type FontKind uint8

const (
	FontKindBitmap FontKind = iota
	FontKindSystem
)

type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

type FontPage struct {
	ID      int
	File    string
	Texture *Texture
}

// Font is either a bitmap font with atlas pages or a vector font collection.
type Font struct {
	Base

	Kind       FontKind
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []FontGlyph
	Kernings   []FontKerning
	Pages      []FontPage

	// Vector fonts only.
	Collection *sfnt.Collection
	FaceNames  []string
}

func (f *Font) Type() Type {
	return TypeFont
}

func (f *Font) ConvertToDummy() {
	f.releasePayload(func() {
		f.Glyphs = nil
		f.Kernings = nil
		for i := range f.Pages {
			f.Pages[i].Texture = nil
		}
		f.Collection = nil
	})
}
