package loaders

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// SystemFontLoader reads TrueType and OpenType fonts and collections, and
// system font configuration files:
//
//	file=NotoSans.ttf
//	face=Noto Sans
//
// where the referenced font file is loaded as a nested asset.
type SystemFontLoader struct{}

func (fl *SystemFontLoader) Extensions() []string {
	return []string{"ttf", "otf", "ttc", "fontcfg"}
}

func (fl *SystemFontLoader) SupportedTypes() assets.Type {
	return assets.TypeFont
}

func (fl *SystemFontLoader) IsLoadable(f *assets.File) bool {
	return isFontBinary(f) || hasKey(f.Bytes(), "file")
}

func isFontBinary(f *assets.File) bool {
	header := f.Header(sniffLen)
	return filetype.IsFont(header) || bytes.HasPrefix(header, []byte("ttcf"))
}

func (fl *SystemFontLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	if isFontBinary(f) {
		font, err := parseFontCollection(f)
		if err != nil {
			return assets.Bundle{}, err
		}
		return assets.NewBundle(font), nil
	}

	font := &assets.Font{Kind: assets.FontKindSystem}
	scanner := bufio.NewScanner(f.Reader())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		if filename, ok := strings.CutPrefix(line, "file="); ok {
			binary, ok := ctx.LoadDependency(filename, hierarchyLevel+1).First().(*assets.Font)
			if !ok || binary.Collection == nil {
				return assets.Bundle{}, fmt.Errorf("%w: %s: font file '%s' could not be loaded", core.ErrInvalidAsset, f.Name(), filename)
			}
			font.Collection = binary.Collection
			font.Face = binary.Face
		} else if face, ok := strings.CutPrefix(line, "face="); ok {
			font.FaceNames = append(font.FaceNames, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return assets.Bundle{}, fmt.Errorf("%w: %s: %v", core.ErrIO, f.Name(), err)
	}
	if font.Collection == nil {
		return assets.Bundle{}, fmt.Errorf("%w: %s declares no font file", core.ErrInvalidAsset, f.Name())
	}
	if len(font.FaceNames) > 0 {
		font.Face = font.FaceNames[0]
	}
	return assets.NewBundle(font), nil
}

func parseFontCollection(f *assets.File) (*assets.Font, error) {
	collection, err := opentype.ParseCollection(f.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidAsset, f.Name(), err)
	}

	font := &assets.Font{
		Kind:       assets.FontKindSystem,
		Collection: collection,
	}
	var buf sfnt.Buffer
	for i := 0; i < collection.NumFonts(); i++ {
		face, err := collection.Font(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: face %d: %v", core.ErrInvalidAsset, f.Name(), i, err)
		}
		name, err := face.Name(&buf, sfnt.NameIDFamily)
		if err != nil {
			core.LogDebug("font '%s': face %d has no family name: %v", f.Name(), i, err)
			continue
		}
		font.FaceNames = append(font.FaceNames, name)
	}
	if len(font.FaceNames) > 0 {
		font.Face = font.FaceNames[0]
	}
	return font, nil
}
