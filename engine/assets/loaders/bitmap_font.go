package loaders

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// BitmapFontLoader reads AngelCode BMFont text descriptors. Atlas pages are
// loaded as nested textures relative to the descriptor.
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Extensions() []string {
	return []string{"fnt"}
}

func (fl *BitmapFontLoader) SupportedTypes() assets.Type {
	return assets.TypeFont
}

func (fl *BitmapFontLoader) IsLoadable(f *assets.File) bool {
	data := bytes.TrimLeft(f.Header(64), " \t\r\n\ufeff")
	return bytes.HasPrefix(data, []byte("info "))
}

func (fl *BitmapFontLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	desc, err := bmfont.ReadDescriptor(f.Reader())
	if err != nil {
		return assets.Bundle{}, fmt.Errorf("%w: %s: %v", core.ErrInvalidAsset, f.Name(), err)
	}

	font := &assets.Font{
		Kind:       assets.FontKindBitmap,
		Face:       desc.Info.Face,
		Size:       uint32(desc.Info.Size),
		LineHeight: int32(desc.Common.LineHeight),
		Baseline:   int32(desc.Common.Base),
		AtlasSizeX: int32(desc.Common.ScaleW),
		AtlasSizeY: int32(desc.Common.ScaleH),
		Glyphs:     make([]assets.FontGlyph, 0, len(desc.Chars)),
		Kernings:   make([]assets.FontKerning, 0, len(desc.Kerning)),
		Pages:      make([]assets.FontPage, 0, len(desc.Pages)),
	}

	for _, p := range desc.Pages {
		page := assets.FontPage{ID: int(p.ID), File: p.File}
		tex, ok := ctx.LoadDependency(p.File, hierarchyLevel+1).First().(*assets.Texture)
		if ok {
			page.Texture = tex
		} else {
			core.LogWarn("font '%s': page %d atlas '%s' could not be loaded", f.Name(), page.ID, p.File)
		}
		font.Pages = append(font.Pages, page)
	}
	sort.Slice(font.Pages, func(i, j int) bool { return font.Pages[i].ID < font.Pages[j].ID })

	for _, g := range desc.Chars {
		font.Glyphs = append(font.Glyphs, assets.FontGlyph{
			Codepoint: rune(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}
	sort.Slice(font.Glyphs, func(i, j int) bool { return font.Glyphs[i].Codepoint < font.Glyphs[j].Codepoint })

	for p, k := range desc.Kerning {
		font.Kernings = append(font.Kernings, assets.FontKerning{
			Codepoint0: rune(p.First),
			Codepoint1: rune(p.Second),
			Amount:     int16(k.Amount),
		})
	}
	sort.Slice(font.Kernings, func(i, j int) bool {
		a, b := font.Kernings[i], font.Kernings[j]
		if a.Codepoint0 != b.Codepoint0 {
			return a.Codepoint0 < b.Codepoint0
		}
		return a.Codepoint1 < b.Codepoint1
	})

	return assets.NewBundle(font), nil
}
